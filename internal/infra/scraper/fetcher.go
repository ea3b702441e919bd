package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxPageBytes = 5 << 20

var ErrPriceNotFound = errors.New("price not found on page")

type Options struct {
	Timeout   time.Duration
	UserAgent string
	Selectors []string
	RateLimit float64
	Burst     int
}

// Fetcher downloads product pages and extracts the price. Outbound requests
// share one rate limiter regardless of proxy.
type Fetcher struct {
	timeout   time.Duration
	userAgent string
	selectors []string
	limiter   *rate.Limiter
	logger    *zap.Logger

	mu      sync.Mutex
	clients map[string]*http.Client
}

func NewFetcher(opts Options, logger *zap.Logger) *Fetcher {
	selectors := opts.Selectors
	if len(selectors) == 0 {
		selectors = DefaultSelectors
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Fetcher{
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		selectors: selectors,
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logger,
		clients:   make(map[string]*http.Client),
	}
}

func (f *Fetcher) FetchPrice(ctx context.Context, rawURL string, proxy *domain.Proxy) (decimal.Decimal, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return decimal.Zero, domain.NewFetchError(rawURL, proxy, fmt.Errorf("rate limiter: %w", err))
	}

	client, err := f.client(proxy)
	if err != nil {
		return decimal.Zero, domain.NewFetchError(rawURL, proxy, err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return decimal.Zero, domain.NewFetchError(rawURL, proxy, err)
	}
	f.setHeaders(request)

	start := time.Now()
	response, err := client.Do(request)
	if err != nil {
		f.logger.Warn("product page request failed", zap.String("url", rawURL), zap.String("proxy", domain.RedactProxy(proxy)), zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return decimal.Zero, domain.NewFetchTimeout(rawURL, proxy, err)
		}
		return decimal.Zero, domain.NewFetchError(rawURL, proxy, err)
	}
	defer response.Body.Close()

	f.logger.Debug(
		"product page fetched",
		zap.String("url", rawURL),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return decimal.Zero, domain.NewFetchError(rawURL, proxy, fmt.Errorf("unexpected status %d", response.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(response.Body, maxPageBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return decimal.Zero, domain.NewFetchTimeout(rawURL, proxy, err)
		}
		return decimal.Zero, domain.NewFetchError(rawURL, proxy, fmt.Errorf("parse html: %w", err))
	}

	price, err := ExtractPrice(doc, f.selectors)
	if err != nil {
		return decimal.Zero, domain.NewFetchError(rawURL, proxy, err)
	}
	return price, nil
}

func (f *Fetcher) client(proxy *domain.Proxy) (*http.Client, error) {
	key := ""
	if proxy != nil {
		key = proxy.URL
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[key]; ok {
		return c, nil
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if key != "" {
		proxyURL, err := url.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	c := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	f.clients[key] = c
	return c, nil
}

func (f *Fetcher) setHeaders(req *http.Request) {
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}
