package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"go.uber.org/zap"
)

type DispatchResult struct {
	Sent   int
	Failed int
}

type Dispatcher struct {
	rewriter domain.LinkRewriter
	notifier domain.Notifier
	alerts   domain.AlertRepository
	recorder Recorder
	logger   *zap.Logger
}

func NewDispatcher(rewriter domain.LinkRewriter, notifier domain.Notifier, alerts domain.AlertRepository, recorder Recorder, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		rewriter: rewriter,
		notifier: notifier,
		alerts:   alerts,
		recorder: recorderOrNop(recorder),
		logger:   logger,
	}
}

// Dispatch notifies every alert in order. An alert is deactivated right after
// its notification is confirmed; a failed send leaves it active for a later
// cycle. The returned error only reports deactivation failures.
func (d *Dispatcher) Dispatch(ctx context.Context, product domain.Product, alerts []domain.PriceAlert) (DispatchResult, error) {
	var (
		result DispatchResult
		errs   []error
	)
	for _, alert := range alerts {
		drop := domain.NewPriceDrop(alert, product, d.link(product.URL))

		if err := d.notifier.Send(ctx, alert.Recipient, drop); err != nil {
			result.Failed++
			d.recorder.NotificationSent(false)
			notifyErr := &domain.NotificationError{AlertID: alert.ID, Recipient: alert.Recipient, Err: err}
			d.logger.Warn(
				"price alert not delivered, alert stays active",
				zap.Uint("alert_id", alert.ID),
				zap.Uint("product_id", product.ID),
				zap.Error(notifyErr),
			)
			continue
		}
		result.Sent++
		d.recorder.NotificationSent(true)

		if err := d.alerts.Deactivate(ctx, alert.ID); err != nil {
			if errors.Is(err, domain.ErrAlertInactive) {
				d.logger.Warn("alert was already inactive", zap.Uint("alert_id", alert.ID))
				continue
			}
			errs = append(errs, fmt.Errorf("deactivate alert %d: %w", alert.ID, err))
			continue
		}
		d.logger.Info(
			"price alert sent and deactivated",
			zap.Uint("alert_id", alert.ID),
			zap.Uint("product_id", product.ID),
			zap.String("current_price", product.CurrentPrice.String()),
			zap.String("target_price", alert.TargetPrice.String()),
		)
	}
	return result, errors.Join(errs...)
}

// link falls back to the original URL whenever rewriting misbehaves.
func (d *Dispatcher) link(productURL string) (link string) {
	if d.rewriter == nil {
		return productURL
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("link rewrite panicked, using original url", zap.String("url", productURL), zap.Any("panic", r))
			link = productURL
		}
	}()
	link = d.rewriter.Rewrite(productURL)
	if link == "" {
		return productURL
	}
	return link
}
