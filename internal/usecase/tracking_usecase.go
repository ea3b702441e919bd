package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidURL       = errors.New("invalid product url")
	ErrInvalidName      = errors.New("product name is required")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidTarget    = errors.New("invalid target price")
	ErrTargetNotBelow   = errors.New("target price must be below current price")
	ErrInvalidRecipient = errors.New("invalid recipient")
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
	HistoryLimit     = 200
)

type TrackRequest struct {
	URL   string
	Name  string
	Store string
}

// TrackingUsecase covers adding products and alerts outside the monitoring
// cycle.
type TrackingUsecase struct {
	products  domain.ProductRepository
	alerts    domain.AlertRepository
	refresher *Refresher
	now       func() time.Time
	logger    *zap.Logger
}

func NewTrackingUsecase(products domain.ProductRepository, alerts domain.AlertRepository, refresher *Refresher, now func() time.Time, logger *zap.Logger) *TrackingUsecase {
	if now == nil {
		now = time.Now
	}
	return &TrackingUsecase{products: products, alerts: alerts, refresher: refresher, now: now, logger: logger}
}

// Track scrapes a product page. A known URL is refreshed in place; an unknown
// one becomes a new product with its first history entry. The bool reports
// whether the product was created.
func (u *TrackingUsecase) Track(ctx context.Context, req TrackRequest) (*domain.Product, bool, error) {
	canonical, err := canonicalURL(req.URL)
	if err != nil {
		return nil, false, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, false, ErrInvalidName
	}

	existing, err := u.products.GetByURL(ctx, canonical)
	if err == nil {
		updated, err := u.refresher.Refresh(ctx, existing.Target())
		if err != nil {
			return nil, false, err
		}
		return updated, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	price, err := u.refresher.Quote(ctx, canonical)
	if err != nil {
		return nil, false, err
	}

	store := strings.TrimSpace(req.Store)
	if store == "" {
		store = storeFromURL(canonical)
	}
	product := &domain.Product{
		Name:         name,
		URL:          canonical,
		Store:        store,
		CurrentPrice: price,
	}
	if err := u.products.CreateChecked(ctx, product, u.now()); err != nil {
		return nil, false, err
	}
	u.logger.Info("product tracked", zap.Uint("product_id", product.ID), zap.String("url", canonical), zap.String("price", price.String()))
	return product, true, nil
}

func (u *TrackingUsecase) CreateAlert(ctx context.Context, productID uint, recipient string, target decimal.Decimal) (*domain.PriceAlert, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, ErrInvalidRecipient
	}
	if !target.IsPositive() {
		return nil, ErrInvalidTarget
	}

	product, err := u.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if target.GreaterThanOrEqual(product.CurrentPrice) {
		return nil, ErrTargetNotBelow
	}

	alert := &domain.PriceAlert{
		ProductID:   product.ID,
		Recipient:   recipient,
		TargetPrice: target,
		Active:      true,
	}
	if err := u.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}
	u.logger.Info("price alert created", zap.Uint("alert_id", alert.ID), zap.Uint("product_id", product.ID), zap.String("target_price", target.String()))
	return alert, nil
}

func (u *TrackingUsecase) ListActiveAlerts(ctx context.Context, recipient string) ([]domain.PriceAlert, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, ErrInvalidRecipient
	}
	return u.alerts.ListActiveByRecipient(ctx, recipient)
}

func (u *TrackingUsecase) ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return u.products.List(ctx, offset, limit)
}

func (u *TrackingUsecase) GetProduct(ctx context.Context, productID uint) (*domain.Product, error) {
	product, err := u.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (u *TrackingUsecase) PriceHistory(ctx context.Context, productID uint) ([]domain.PriceHistoryEntry, error) {
	if _, err := u.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return u.products.History(ctx, productID, HistoryLimit)
}

func canonicalURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrInvalidURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String(), nil
}

func storeFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
