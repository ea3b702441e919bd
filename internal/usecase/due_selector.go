package usecase

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"go.uber.org/zap"
)

type DueSelector struct {
	products  domain.ProductRepository
	staleness time.Duration
	logger    *zap.Logger
}

func NewDueSelector(products domain.ProductRepository, staleness time.Duration, logger *zap.Logger) *DueSelector {
	return &DueSelector{products: products, staleness: staleness, logger: logger}
}

// SelectDue returns products never checked or last checked before
// now-staleness, ordered by id. Any failure matches domain.ErrStorageUnavailable.
func (s *DueSelector) SelectDue(ctx context.Context, now time.Time) ([]domain.Product, error) {
	cutoff := now.Add(-s.staleness)
	products, err := s.products.ListDue(ctx, cutoff)
	if err != nil {
		if !errors.Is(err, domain.ErrStorageUnavailable) {
			err = &domain.StorageError{Op: "list due products", Err: err}
		}
		return nil, err
	}

	due := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.DueAt(now, s.staleness) {
			due = append(due, p)
		}
	}
	slices.SortStableFunc(due, func(a, b domain.Product) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	s.logger.Info("due products selected", zap.Int("count", len(due)), zap.Time("cutoff", cutoff))
	return due, nil
}
