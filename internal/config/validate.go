package config

import (
	"errors"
	"fmt"
)

const (
	NotifyLog      = "log"
	NotifyEmail    = "email"
	NotifyTelegram = "telegram"
)

func (c Config) validate() error {
	if c.StalenessThreshold <= 0 {
		return errors.New("STALENESS_THRESHOLD must be positive")
	}
	if c.CycleInterval <= 0 {
		return errors.New("CYCLE_INTERVAL must be positive")
	}
	if c.CycleWorkers < 1 {
		return errors.New("CYCLE_WORKERS must be at least 1")
	}
	if c.FetchRateLimit <= 0 {
		return errors.New("FETCH_RATE_LIMIT must be positive")
	}
	switch c.NotifyChannel {
	case NotifyLog:
	case NotifyEmail:
		if c.SMTPHost == "" {
			return errors.New("SMTP_HOST is required for email notifications")
		}
	case NotifyTelegram:
		if c.TelegramBotToken == "" {
			return errors.New("TELEGRAM_BOT_TOKEN is required for telegram notifications")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_CHANNEL %q", c.NotifyChannel)
	}
	return nil
}
