package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/NasaVasa/pricewatch/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// MessageSender is the part of *tgbotapi.BotAPI used to deliver messages.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier delivers alerts to a chat. The recipient is the chat id.
type TelegramNotifier struct {
	api    MessageSender
	logger *zap.Logger
}

func NewTelegramNotifier(api MessageSender, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{api: api, logger: logger}
}

func (n *TelegramNotifier) Send(ctx context.Context, recipient string, drop domain.PriceDrop) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(strings.TrimSpace(recipient), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a chat id", domain.ErrInvalidRecipient, recipient)
	}

	msg := tgbotapi.NewMessage(chatID, PlainText(drop))
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Warn("telegram send failed", zap.Int64("chat_id", chatID), zap.Uint("alert_id", drop.AlertID), zap.Error(err))
		return err
	}
	n.logger.Info("telegram notification sent", zap.Int64("chat_id", chatID), zap.Uint("alert_id", drop.AlertID))
	return nil
}
