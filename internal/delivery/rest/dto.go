package rest

import (
	"time"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"github.com/NasaVasa/pricewatch/internal/usecase"
	"github.com/shopspring/decimal"
)

type trackRequest struct {
	URL   string `json:"url" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Store string `json:"store"`
}

type alertRequest struct {
	ProductID   uint            `json:"product_id" binding:"required"`
	Recipient   string          `json:"recipient" binding:"required"`
	TargetPrice decimal.Decimal `json:"target_price"`
}

type productResponse struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	Store        string     `json:"store"`
	CurrentPrice string     `json:"current_price"`
	LastChecked  *time.Time `json:"last_checked"`
	CreatedAt    time.Time  `json:"created_at"`
}

type historyResponse struct {
	Price     string    `json:"price"`
	CheckedAt time.Time `json:"checked_at"`
}

type alertResponse struct {
	ID          uint      `json:"id"`
	ProductID   uint      `json:"product_id"`
	Recipient   string    `json:"recipient"`
	TargetPrice string    `json:"target_price"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type cycleResponse struct {
	ID           string  `json:"id"`
	Due          int     `json:"due"`
	Done         int     `json:"done"`
	Errored      int     `json:"errored"`
	Notified     int     `json:"notified"`
	NotifyFailed int     `json:"notify_failed"`
	DurationSec  float64 `json:"duration_seconds"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		URL:          p.URL,
		Store:        p.Store,
		CurrentPrice: p.CurrentPrice.StringFixed(2),
		LastChecked:  p.LastChecked,
		CreatedAt:    p.CreatedAt,
	}
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toHistoryResponses(entries []domain.PriceHistoryEntry) []historyResponse {
	out := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyResponse{Price: e.Price.StringFixed(2), CheckedAt: e.CheckedAt})
	}
	return out
}

func toAlertResponse(a domain.PriceAlert) alertResponse {
	return alertResponse{
		ID:          a.ID,
		ProductID:   a.ProductID,
		Recipient:   a.Recipient,
		TargetPrice: a.TargetPrice.StringFixed(2),
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
	}
}

func toCycleResponse(r usecase.CycleReport) cycleResponse {
	return cycleResponse{
		ID:           r.ID,
		Due:          r.Due,
		Done:         r.Done,
		Errored:      r.Errored,
		Notified:     r.Notified,
		NotifyFailed: r.NotifyFailed,
		DurationSec:  r.Duration.Seconds(),
	}
}
