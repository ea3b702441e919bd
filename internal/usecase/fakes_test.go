package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"github.com/shopspring/decimal"
)

var errDBDown = errors.New("connection refused")

// memStore is an in-memory ProductRepository and AlertRepository.
type memStore struct {
	mu       sync.Mutex
	products map[uint]domain.Product
	history  []domain.PriceHistoryEntry
	alerts   map[uint]domain.PriceAlert
	nextID   uint

	listDueErr    error
	recordErr     error
	listAlertsErr error
	deactivateErr error
	deactivations map[uint]int
}

func newMemStore() *memStore {
	return &memStore{
		products:      make(map[uint]domain.Product),
		alerts:        make(map[uint]domain.PriceAlert),
		deactivations: make(map[uint]int),
		nextID:        100,
	}
}

func (s *memStore) addProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		s.nextID++
		p.ID = s.nextID
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addAlert(a domain.PriceAlert) domain.PriceAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		s.nextID++
		a.ID = s.nextID
	}
	s.alerts[a.ID] = a
	return a
}

func (s *memStore) product(id uint) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

func (s *memStore) alert(id uint) domain.PriceAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alerts[id]
}

func (s *memStore) historyFor(productID uint) []domain.PriceHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PriceHistoryEntry
	for _, e := range s.history {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) ListDue(ctx context.Context, cutoff time.Time) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listDueErr != nil {
		return nil, s.listDueErr
	}
	var out []domain.Product
	for _, p := range s.products {
		if p.LastChecked == nil || p.LastChecked.Before(cutoff) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *memStore) GetByURL(ctx context.Context, url string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.URL == url {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) List(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Product
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) CreateChecked(ctx context.Context, product *domain.Product, checkedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	product.ID = s.nextID
	product.LastChecked = &checkedAt
	s.products[product.ID] = *product
	s.history = append(s.history, domain.PriceHistoryEntry{ProductID: product.ID, Price: product.CurrentPrice, CheckedAt: checkedAt})
	return nil
}

func (s *memStore) RecordPrice(ctx context.Context, productID uint, price decimal.Decimal, checkedAt time.Time) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	p, ok := s.products[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.CurrentPrice = price
	p.LastChecked = &checkedAt
	s.products[productID] = p
	s.history = append(s.history, domain.PriceHistoryEntry{ProductID: productID, Price: price, CheckedAt: checkedAt})
	return &p, nil
}

func (s *memStore) History(ctx context.Context, productID uint, limit int) ([]domain.PriceHistoryEntry, error) {
	entries := s.historyFor(productID)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CheckedAt.After(entries[j].CheckedAt) })
	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *memStore) Create(ctx context.Context, alert *domain.PriceAlert) error {
	*alert = s.addAlert(*alert)
	return nil
}

func (s *memStore) ListActiveByProduct(ctx context.Context, productID uint) ([]domain.PriceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listAlertsErr != nil {
		return nil, s.listAlertsErr
	}
	var out []domain.PriceAlert
	for _, a := range s.alerts {
		if a.ProductID == productID && a.Active {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListActiveByRecipient(ctx context.Context, recipient string) ([]domain.PriceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PriceAlert
	for _, a := range s.alerts {
		if a.Recipient == recipient && a.Active {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) Deactivate(ctx context.Context, alertID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deactivateErr != nil {
		return s.deactivateErr
	}
	a, ok := s.alerts[alertID]
	if !ok {
		return domain.ErrNotFound
	}
	if !a.Active {
		return domain.ErrAlertInactive
	}
	a.Active = false
	s.alerts[alertID] = a
	s.deactivations[alertID]++
	return nil
}

// fakeFetcher returns prices or errors keyed by URL.
type fakeFetcher struct {
	mu      sync.Mutex
	prices  map[string]decimal.Decimal
	errs    map[string]error
	panics  map[string]bool
	calls   map[string]int
	proxies []*domain.Proxy
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		prices: make(map[string]decimal.Decimal),
		errs:   make(map[string]error),
		panics: make(map[string]bool),
		calls:  make(map[string]int),
	}
}

func (f *fakeFetcher) FetchPrice(ctx context.Context, url string, proxy *domain.Proxy) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	f.proxies = append(f.proxies, proxy)
	if f.panics[url] {
		panic("parser exploded")
	}
	if err, ok := f.errs[url]; ok {
		return decimal.Zero, err
	}
	price, ok := f.prices[url]
	if !ok {
		return decimal.Zero, errors.New("no price configured")
	}
	return price, nil
}

type sentNotification struct {
	recipient string
	drop      domain.PriceDrop
}

type fakeNotifier struct {
	mu    sync.Mutex
	fail  map[string]error
	sent  []sentNotification
	tries int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{fail: make(map[string]error)}
}

func (n *fakeNotifier) Send(ctx context.Context, recipient string, drop domain.PriceDrop) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tries++
	if err, ok := n.fail[recipient]; ok {
		return err
	}
	n.sent = append(n.sent, sentNotification{recipient: recipient, drop: drop})
	return nil
}

func (n *fakeNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeProxies struct {
	proxy  *domain.Proxy
	failed []*domain.Proxy
}

func (p *fakeProxies) Select() *domain.Proxy { return p.proxy }

func (p *fakeProxies) ReportFailure(proxy *domain.Proxy) { p.failed = append(p.failed, proxy) }

type rewriterFunc func(string) string

func (f rewriterFunc) Rewrite(url string) string { return f(url) }

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func timePtr(t time.Time) *time.Time { return &t }
