package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ProductRepository interface {
	// ListDue returns products never checked or checked before cutoff, ordered by id.
	ListDue(ctx context.Context, cutoff time.Time) ([]Product, error)
	GetByID(ctx context.Context, id uint) (*Product, error)
	GetByURL(ctx context.Context, url string) (*Product, error)
	List(ctx context.Context, offset, limit int) ([]Product, error)
	// CreateChecked inserts a product with its first history entry atomically.
	CreateChecked(ctx context.Context, product *Product, checkedAt time.Time) error
	// RecordPrice updates price and last_checked and appends a history entry atomically.
	RecordPrice(ctx context.Context, productID uint, price decimal.Decimal, checkedAt time.Time) (*Product, error)
	History(ctx context.Context, productID uint, limit int) ([]PriceHistoryEntry, error)
}

type AlertRepository interface {
	Create(ctx context.Context, alert *PriceAlert) error
	// ListActiveByProduct returns active alerts of a product ordered by id.
	ListActiveByProduct(ctx context.Context, productID uint) ([]PriceAlert, error)
	ListActiveByRecipient(ctx context.Context, recipient string) ([]PriceAlert, error)
	// Deactivate flips an active alert to inactive. Returns ErrAlertInactive if
	// the alert was already inactive.
	Deactivate(ctx context.Context, alertID uint) error
}
