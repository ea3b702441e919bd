package usecase

import (
	"context"
	"slices"

	"github.com/NasaVasa/pricewatch/internal/domain"
)

type AlertMatcher struct {
	alerts domain.AlertRepository
}

func NewAlertMatcher(alerts domain.AlertRepository) *AlertMatcher {
	return &AlertMatcher{alerts: alerts}
}

// FindTriggered returns the product's active alerts whose target is strictly
// above the current price, ordered by id.
func (m *AlertMatcher) FindTriggered(ctx context.Context, product domain.Product) ([]domain.PriceAlert, error) {
	alerts, err := m.alerts.ListActiveByProduct(ctx, product.ID)
	if err != nil {
		return nil, domain.NewStorageError("list product alerts", err)
	}

	triggered := make([]domain.PriceAlert, 0, len(alerts))
	for _, alert := range alerts {
		if alert.ProductID == product.ID && alert.TriggeredBy(product.CurrentPrice) {
			triggered = append(triggered, alert)
		}
	}
	slices.SortStableFunc(triggered, func(a, b domain.PriceAlert) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return triggered, nil
}
