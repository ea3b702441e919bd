package notify

import (
	"context"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"go.uber.org/zap"
)

// LogNotifier only records the notification. Used for local runs.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, recipient string, drop domain.PriceDrop) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.Info(
		"price alert",
		zap.String("recipient", recipient),
		zap.Uint("alert_id", drop.AlertID),
		zap.String("subject", Subject(drop)),
		zap.String("link", drop.Link),
	)
	return nil
}
