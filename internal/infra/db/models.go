package db

import (
	"time"

	"github.com/shopspring/decimal"
)

type productModel struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"not null"`
	URL          string          `gorm:"uniqueIndex;not null"`
	Store        string          `gorm:"index"`
	CurrentPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	LastChecked  *time.Time      `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (productModel) TableName() string { return "products" }

type priceHistoryModel struct {
	ID        uint            `gorm:"primaryKey"`
	ProductID uint            `gorm:"index:idx_price_history_product_checked,priority:1;not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CheckedAt time.Time       `gorm:"index:idx_price_history_product_checked,priority:2;not null"`
}

func (priceHistoryModel) TableName() string { return "price_history" }

type alertModel struct {
	ID          uint            `gorm:"primaryKey"`
	ProductID   uint            `gorm:"index:idx_price_alerts_product_active,priority:1;not null"`
	Recipient   string          `gorm:"index;not null"`
	TargetPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Active      bool            `gorm:"index:idx_price_alerts_product_active,priority:2;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (alertModel) TableName() string { return "price_alerts" }
