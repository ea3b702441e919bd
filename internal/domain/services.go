package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Proxy is an outbound proxy handle. A nil *Proxy means a direct connection.
type Proxy struct {
	URL string
}

type ProxySelector interface {
	Select() *Proxy
	ReportFailure(proxy *Proxy)
}

type PriceFetcher interface {
	FetchPrice(ctx context.Context, url string, proxy *Proxy) (decimal.Decimal, error)
}

// LinkRewriter must be total: it returns the input unchanged when no rule
// applies or rewriting fails.
type LinkRewriter interface {
	Rewrite(url string) string
}

// Notifier returns nil only on confirmed delivery.
type Notifier interface {
	Send(ctx context.Context, recipient string, drop PriceDrop) error
}
