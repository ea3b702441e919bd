package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"go.uber.org/zap"
)

func newTracking(store *memStore, fetcher *fakeFetcher, now time.Time) *TrackingUsecase {
	clockFn := func() time.Time { return now }
	refresher := NewRefresher(store, fetcher, nil, nil, clockFn, zap.NewNop())
	return NewTrackingUsecase(store, store, refresher, clockFn, zap.NewNop())
}

func TestTrackCreatesProductWithHistory(t *testing.T) {
	store := newMemStore()
	fetcher := newFakeFetcher()
	fetcher.prices["https://www.amazon.com/dp/B01"] = price("120")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	product, created, err := newTracking(store, fetcher, now).Track(context.Background(), TrackRequest{
		URL:  " https://WWW.Amazon.com/dp/B01#reviews ",
		Name: "Kettle",
	})
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if !created {
		t.Fatal("created = false for new url")
	}
	if product.URL != "https://www.amazon.com/dp/B01" || product.Store != "amazon.com" {
		t.Fatalf("product = %+v", product)
	}
	if product.LastChecked == nil || !product.LastChecked.Equal(now) {
		t.Fatalf("last checked = %v", product.LastChecked)
	}
	if n := len(store.historyFor(product.ID)); n != 1 {
		t.Fatalf("history entries = %d", n)
	}
}

func TestTrackExistingRefreshes(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(domain.Product{Name: "Kettle", URL: "https://store.example/k", CurrentPrice: price("40")})
	fetcher := newFakeFetcher()
	fetcher.prices[p.URL] = price("35")

	product, created, err := newTracking(store, fetcher, time.Now()).Track(context.Background(), TrackRequest{URL: p.URL, Name: "Kettle"})
	if err != nil {
		t.Fatal(err)
	}
	if created || product.ID != p.ID || !product.CurrentPrice.Equal(price("35")) {
		t.Fatalf("product = %+v, created = %v", product, created)
	}
}

func TestTrackValidation(t *testing.T) {
	u := newTracking(newMemStore(), newFakeFetcher(), time.Now())
	if _, _, err := u.Track(context.Background(), TrackRequest{URL: "ftp://x", Name: "n"}); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("err = %v, want ErrInvalidURL", err)
	}
	if _, _, err := u.Track(context.Background(), TrackRequest{URL: "https://store.example/x", Name: " "}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("err = %v, want ErrInvalidName", err)
	}
}

func TestTrackFetchFailureCreatesNothing(t *testing.T) {
	store := newMemStore()
	fetcher := newFakeFetcher()
	fetcher.errs["https://store.example/x"] = errors.New("blocked")

	_, _, err := newTracking(store, fetcher, time.Now()).Track(context.Background(), TrackRequest{URL: "https://store.example/x", Name: "X"})
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v", err)
	}
	if products, _ := store.List(context.Background(), 0, 10); len(products) != 0 {
		t.Fatalf("products = %+v", products)
	}
}

func TestCreateAlertValidation(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(domain.Product{URL: "u", CurrentPrice: price("100")})
	u := newTracking(store, newFakeFetcher(), time.Now())
	ctx := context.Background()

	tests := []struct {
		name      string
		productID uint
		recipient string
		target    string
		want      error
	}{
		{"unknown product", 999, "a@example.com", "50", ErrProductNotFound},
		{"empty recipient", p.ID, " ", "50", ErrInvalidRecipient},
		{"zero target", p.ID, "a@example.com", "0", ErrInvalidTarget},
		{"target equal to price", p.ID, "a@example.com", "100", ErrTargetNotBelow},
		{"target above price", p.ID, "a@example.com", "150", ErrTargetNotBelow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := u.CreateAlert(ctx, tt.productID, tt.recipient, price(tt.target)); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	alert, err := u.CreateAlert(ctx, p.ID, "a@example.com", price("80"))
	if err != nil {
		t.Fatal(err)
	}
	if !alert.Active || alert.ID == 0 {
		t.Fatalf("alert = %+v", alert)
	}
	active, err := u.ListActiveAlerts(ctx, "a@example.com")
	if err != nil || len(active) != 1 {
		t.Fatalf("active = %+v, err = %v", active, err)
	}
}

func TestListProductsClampsLimit(t *testing.T) {
	store := newMemStore()
	for i := 0; i < 3; i++ {
		store.addProduct(domain.Product{URL: string(rune('a' + i))})
	}
	u := newTracking(store, newFakeFetcher(), time.Now())
	got, err := u.ListProducts(context.Background(), -5, 0)
	if err != nil || len(got) != 3 {
		t.Fatalf("got %d, err = %v", len(got), err)
	}
	got, _ = u.ListProducts(context.Background(), 1, 1)
	if len(got) != 1 {
		t.Fatalf("got %d", len(got))
	}
}

func TestPriceHistoryUnknownProduct(t *testing.T) {
	u := newTracking(newMemStore(), newFakeFetcher(), time.Now())
	if _, err := u.PriceHistory(context.Background(), 42); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v", err)
	}
}
