package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceAlert fires once when the product price drops below TargetPrice.
// An inactive alert is terminal.
type PriceAlert struct {
	ID          uint
	ProductID   uint
	Recipient   string
	TargetPrice decimal.Decimal
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TriggeredBy is true when the alert is active and the price is strictly
// below the target.
func (a PriceAlert) TriggeredBy(price decimal.Decimal) bool {
	return a.Active && a.TargetPrice.GreaterThan(price)
}

// PriceDrop is the notification payload for one triggered alert.
type PriceDrop struct {
	AlertID      uint
	Recipient    string
	ProductName  string
	Store        string
	TargetPrice  decimal.Decimal
	CurrentPrice decimal.Decimal
	Savings      decimal.Decimal
	Link         string
}

func NewPriceDrop(alert PriceAlert, product Product, link string) PriceDrop {
	return PriceDrop{
		AlertID:      alert.ID,
		Recipient:    alert.Recipient,
		ProductName:  product.Name,
		Store:        product.Store,
		TargetPrice:  alert.TargetPrice,
		CurrentPrice: product.CurrentPrice,
		Savings:      alert.TargetPrice.Sub(product.CurrentPrice),
		Link:         link,
	}
}
