package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a tracked store item. LastChecked is nil until the first
// successful price refresh.
type Product struct {
	ID           uint
	Name         string
	URL          string
	Store        string
	CurrentPrice decimal.Decimal
	LastChecked  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DueAt reports whether the product needs a price check at now.
func (p Product) DueAt(now time.Time, staleness time.Duration) bool {
	if p.LastChecked == nil {
		return true
	}
	return p.LastChecked.Before(now.Add(-staleness))
}

// RefreshTarget is the narrow view of a product the refresher works on.
type RefreshTarget struct {
	ProductID uint
	URL       string
	Name      string
	Store     string
}

func (p Product) Target() RefreshTarget {
	return RefreshTarget{ProductID: p.ID, URL: p.URL, Name: p.Name, Store: p.Store}
}

type PriceHistoryEntry struct {
	ID        uint
	ProductID uint
	Price     decimal.Decimal
	CheckedAt time.Time
}
