package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	StalenessThreshold time.Duration `env:"STALENESS_THRESHOLD,default=6h"`
	CycleInterval      time.Duration `env:"CYCLE_INTERVAL,default=6h"`
	CycleWorkers       int           `env:"CYCLE_WORKERS,default=1"`

	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT,default=15s"`
	FetchRateLimit float64       `env:"FETCH_RATE_LIMIT,default=1"`
	FetchBurst     int           `env:"FETCH_BURST,default=1"`
	FetchUserAgent string        `env:"FETCH_USER_AGENT,default=Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"`
	PriceSelectors []string      `env:"PRICE_SELECTORS"`

	Proxies          []string      `env:"PROXIES"`
	ProxyAllowDirect bool          `env:"PROXY_ALLOW_DIRECT,default=true"`
	ProxyCooldown    time.Duration `env:"PROXY_COOLDOWN,default=10m"`

	AffiliateRulesFile string `env:"AFFILIATE_RULES_FILE"`

	NotifyChannel string `env:"NOTIFY_CHANNEL,default=log"`
	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT,default=587"`
	SMTPUser      string `env:"SMTP_USER"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	SMTPFrom      string `env:"SMTP_FROM,default=no-reply@pricewatch.local"`

	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramPollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT,default=60"`

	HTTPAddr string `env:"HTTP_ADDR,default=:8080"`
	GinMode  string `env:"GIN_MODE,default=release"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
