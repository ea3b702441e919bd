package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type directOnly struct{}

func (directOnly) Select() *domain.Proxy       { return nil }
func (directOnly) ReportFailure(*domain.Proxy) {}

type Refresher struct {
	products domain.ProductRepository
	fetcher  domain.PriceFetcher
	proxies  domain.ProxySelector
	recorder Recorder
	now      func() time.Time
	logger   *zap.Logger
}

// NewRefresher builds a refresher. proxies and recorder may be nil.
func NewRefresher(products domain.ProductRepository, fetcher domain.PriceFetcher, proxies domain.ProxySelector, recorder Recorder, now func() time.Time, logger *zap.Logger) *Refresher {
	if proxies == nil {
		proxies = directOnly{}
	}
	if now == nil {
		now = time.Now
	}
	return &Refresher{
		products: products,
		fetcher:  fetcher,
		proxies:  proxies,
		recorder: recorderOrNop(recorder),
		now:      now,
		logger:   logger,
	}
}

// Quote fetches the current price of a URL without persisting it. Failures
// are always *domain.FetchError and bench the proxy that was used.
func (r *Refresher) Quote(ctx context.Context, rawURL string) (decimal.Decimal, error) {
	proxy := r.proxies.Select()
	start := time.Now()
	price, err := r.fetcher.FetchPrice(ctx, rawURL, proxy)
	if err == nil && price.IsNegative() {
		err = domain.NewFetchError(rawURL, proxy, domain.ErrInvalidPrice)
	}
	r.recorder.FetchObserved(time.Since(start), err)
	if err != nil {
		if proxy != nil {
			r.proxies.ReportFailure(proxy)
		}
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			err = domain.NewFetchError(rawURL, proxy, err)
		}
		return decimal.Zero, err
	}
	return price, nil
}

// Refresh fetches a new price and stores it together with a history entry.
// On fetch failure nothing is written, so the product stays due.
func (r *Refresher) Refresh(ctx context.Context, target domain.RefreshTarget) (*domain.Product, error) {
	price, err := r.Quote(ctx, target.URL)
	if err != nil {
		return nil, err
	}

	checkedAt := r.now()
	product, err := r.products.RecordPrice(ctx, target.ProductID, price, checkedAt)
	if err != nil {
		return nil, domain.NewStorageError("record price", err)
	}

	r.logger.Info(
		"price refreshed",
		zap.Uint("product_id", target.ProductID),
		zap.String("price", price.String()),
		zap.Time("checked_at", checkedAt),
	)
	return product, nil
}
