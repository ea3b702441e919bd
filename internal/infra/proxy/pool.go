package proxy

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"go.uber.org/zap"
)

// Pool picks a random proxy per fetch. A failed proxy sits out for the
// cooldown period. When direct connections are allowed, "no proxy" is one
// of the candidates.
type Pool struct {
	proxies     []string
	allowDirect bool
	cooldown    time.Duration
	logger      *zap.Logger
	now         func() time.Time
	intn        func(int) int

	mu          sync.Mutex
	benchedTill map[string]time.Time
}

func NewPool(proxies []string, allowDirect bool, cooldown time.Duration, logger *zap.Logger) *Pool {
	filtered := make([]string, 0, len(proxies))
	for _, p := range proxies {
		if p != "" {
			filtered = append(filtered, p)
		}
	}
	logger.Info("proxy pool initialized", zap.Int("proxies", len(filtered)), zap.Bool("allow_direct", allowDirect))
	return &Pool{
		proxies:     filtered,
		allowDirect: allowDirect,
		cooldown:    cooldown,
		logger:      logger,
		now:         time.Now,
		intn:        rand.IntN,
		benchedTill: make(map[string]time.Time),
	}
}

func (p *Pool) Select() *domain.Proxy {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	candidates := make([]string, 0, len(p.proxies)+1)
	for _, addr := range p.proxies {
		if till, ok := p.benchedTill[addr]; ok {
			if now.Before(till) {
				continue
			}
			delete(p.benchedTill, addr)
		}
		candidates = append(candidates, addr)
	}
	if p.allowDirect || len(candidates) == 0 {
		// "" stands for a direct connection
		candidates = append(candidates, "")
	}

	choice := candidates[p.intn(len(candidates))]
	if choice == "" {
		p.logger.Debug("using direct connection")
		return nil
	}
	selected := &domain.Proxy{URL: choice}
	p.logger.Debug("selected proxy", zap.String("proxy", domain.RedactProxy(selected)))
	return selected
}

func (p *Pool) ReportFailure(proxy *domain.Proxy) {
	if proxy == nil || proxy.URL == "" {
		return
	}
	p.mu.Lock()
	p.benchedTill[proxy.URL] = p.now().Add(p.cooldown)
	p.mu.Unlock()
	p.logger.Warn("proxy failed, cooling down", zap.String("proxy", domain.RedactProxy(proxy)), zap.Duration("cooldown", p.cooldown))
}
