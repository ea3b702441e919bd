package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"github.com/NasaVasa/pricewatch/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Tracker interface {
	Track(ctx context.Context, req usecase.TrackRequest) (*domain.Product, bool, error)
	CreateAlert(ctx context.Context, productID uint, recipient string, target decimal.Decimal) (*domain.PriceAlert, error)
	ListActiveAlerts(ctx context.Context, recipient string) ([]domain.PriceAlert, error)
	GetProduct(ctx context.Context, productID uint) (*domain.Product, error)
}

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handlers struct {
	tracker Tracker
	logger  *zap.Logger
}

func NewHandlers(tracker Tracker, logger *zap.Logger) *Handlers {
	return &Handlers{tracker: tracker, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, api Sender, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, api, update)
	}
}

func (h *Handlers) handleCommand(ctx context.Context, api Sender, update tgbotapi.Update) {
	command := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID
	recipient := strconv.FormatInt(chatID, 10)

	h.logger.Info(
		"telegram command received",
		zap.Int64("chat_id", chatID),
		zap.String("command", command),
		zap.String("args", args),
	)

	switch command {
	case "start":
		h.reply(api, chatID, "Welcome to Pricewatch.\n\n"+HelpText)
	case "help":
		h.reply(api, chatID, HelpText)
	case "track":
		rawURL, store, name, err := ParseTrackArgs(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /track <url> <store> <name>")
			return
		}
		product, created, err := h.tracker.Track(ctx, usecase.TrackRequest{URL: rawURL, Name: name, Store: store})
		if err != nil {
			h.logger.Warn("track failed", zap.Int64("chat_id", chatID), zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		verb := "Already tracking"
		if created {
			verb = "Now tracking"
		}
		h.reply(api, chatID, fmt.Sprintf("%s #%d %s at $%s.\nUse /watch %d <target_price> to get an alert.",
			verb, product.ID, product.Name, product.CurrentPrice.StringFixed(2), product.ID))
	case "watch":
		productID, target, err := ParseWatchArgs(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /watch <product_id> <target_price>")
			return
		}
		alert, err := h.tracker.CreateAlert(ctx, productID, recipient, target)
		if err != nil {
			h.logger.Warn("watch failed", zap.Int64("chat_id", chatID), zap.Uint("product_id", productID), zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		h.logger.Info("watch complete", zap.Int64("chat_id", chatID), zap.Uint("alert_id", alert.ID))
		h.reply(api, chatID, fmt.Sprintf("Alert #%d created: product #%d below $%s.", alert.ID, alert.ProductID, alert.TargetPrice.StringFixed(2)))
	case "alerts":
		alerts, err := h.tracker.ListActiveAlerts(ctx, recipient)
		if err != nil {
			h.logger.Warn("alerts list failed", zap.Int64("chat_id", chatID), zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		if len(alerts) == 0 {
			h.reply(api, chatID, "No active alerts. Use /watch to create one.")
			return
		}
		h.reply(api, chatID, h.formatAlerts(ctx, alerts))
	default:
		h.reply(api, chatID, "Unknown command.\n\n"+HelpText)
	}
}

func (h *Handlers) formatAlerts(ctx context.Context, alerts []domain.PriceAlert) string {
	var builder strings.Builder
	builder.WriteString("Your alerts:\n")
	for _, alert := range alerts {
		name := fmt.Sprintf("product #%d", alert.ProductID)
		current := "?"
		if product, err := h.tracker.GetProduct(ctx, alert.ProductID); err == nil {
			name = product.Name
			current = product.CurrentPrice.StringFixed(2)
		}
		builder.WriteString(fmt.Sprintf("#%d %s: target $%s, now $%s\n", alert.ID, name, alert.TargetPrice.StringFixed(2), current))
	}
	return builder.String()
}

func (h *Handlers) errorMessage(err error) string {
	var fetchErr *domain.FetchError
	switch {
	case errors.Is(err, usecase.ErrInvalidURL):
		return "Invalid url. Use a full http(s) product link."
	case errors.Is(err, usecase.ErrInvalidName):
		return "Product name is required."
	case errors.Is(err, usecase.ErrProductNotFound):
		return "Product not found. Use /track first."
	case errors.Is(err, usecase.ErrInvalidTarget):
		return "Invalid target price. Use a positive number like 89.99."
	case errors.Is(err, usecase.ErrTargetNotBelow):
		return "Target price must be below the current price."
	case errors.As(err, &fetchErr):
		return "Could not read the price from that page. Please try again later."
	}

	h.logger.Warn("unhandled error", zap.Error(err))
	return "Something went wrong. Please try again."
}

func (h *Handlers) reply(api Sender, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := api.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
