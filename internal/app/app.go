package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/NasaVasa/pricewatch/internal/config"
	"github.com/NasaVasa/pricewatch/internal/delivery/rest"
	"github.com/NasaVasa/pricewatch/internal/delivery/telegram"
	"github.com/NasaVasa/pricewatch/internal/domain"
	"github.com/NasaVasa/pricewatch/internal/infra/affiliate"
	"github.com/NasaVasa/pricewatch/internal/infra/db"
	"github.com/NasaVasa/pricewatch/internal/infra/log"
	"github.com/NasaVasa/pricewatch/internal/infra/notify"
	"github.com/NasaVasa/pricewatch/internal/infra/proxy"
	"github.com/NasaVasa/pricewatch/internal/infra/scraper"
	"github.com/NasaVasa/pricewatch/internal/metrics"
	"github.com/NasaVasa/pricewatch/internal/usecase"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	scheduler *usecase.Scheduler
	server    *http.Server
	bot       *telegram.Bot
	logger    *zap.Logger
	cleanupFn func() error
	wg        sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	cleanup := func() error {
		sqlDB, err := dbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	productRepo := db.NewProductRepository(dbConn)
	alertRepo := db.NewAlertRepository(dbConn)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	monitor := metrics.NewMonitor(registry)

	rules, err := affiliate.LoadRules(cfg.AffiliateRulesFile)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	rewriter := affiliate.NewRewriter(rules, logger.Named("affiliate"))

	fetcher := scraper.NewFetcher(scraper.Options{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.FetchUserAgent,
		Selectors: cfg.PriceSelectors,
		RateLimit: cfg.FetchRateLimit,
		Burst:     cfg.FetchBurst,
	}, logger.Named("scraper"))
	proxies := proxy.NewPool(cfg.Proxies, cfg.ProxyAllowDirect, cfg.ProxyCooldown, logger.Named("proxy"))

	var api *tgbotapi.BotAPI
	if cfg.TelegramBotToken != "" {
		api, err = telegram.NewAPI(cfg.TelegramBotToken)
		if err != nil {
			_ = cleanup()
			return nil, err
		}
	}
	var sender notify.MessageSender
	if api != nil {
		sender = api
	}
	notifier := newNotifier(cfg, sender, logger)

	refresher := usecase.NewRefresher(productRepo, fetcher, proxies, monitor, time.Now, logger)
	cycle := usecase.NewCycle(
		usecase.NewDueSelector(productRepo, cfg.StalenessThreshold, logger),
		refresher,
		usecase.NewAlertMatcher(alertRepo),
		usecase.NewDispatcher(rewriter, notifier, alertRepo, monitor, logger),
		usecase.CycleOptions{Workers: cfg.CycleWorkers, Recorder: monitor},
		logger,
	)
	scheduler := usecase.NewScheduler(cycle, cfg.CycleInterval, logger)
	tracking := usecase.NewTrackingUsecase(productRepo, alertRepo, refresher, time.Now, logger)

	gin.SetMode(cfg.GinMode)
	handler := rest.NewHandler(tracking, scheduler, logger.Named("http"))
	router := rest.NewRouter(handler, gin.WrapH(metrics.Handler(registry)), logger.Named("http"))
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var bot *telegram.Bot
	if api != nil {
		bot = telegram.NewBot(api, telegram.NewHandlers(tracking, logger.Named("telegram")), cfg.TelegramPollTimeout, logger.Named("telegram"))
	}

	return &App{
		scheduler: scheduler,
		server:    server,
		bot:       bot,
		logger:    logger,
		cleanupFn: cleanup,
	}, nil
}

// newNotifier returns the log notifier for NOTIFY_CHANNEL=log. Otherwise each
// alert is routed by recipient to every transport that is configured, so
// chat ids created through the bot and emails created through the API are
// both deliverable.
func newNotifier(cfg config.Config, api notify.MessageSender, logger *zap.Logger) domain.Notifier {
	if cfg.NotifyChannel == config.NotifyLog {
		return notify.NewLogNotifier(logger.Named("notify"))
	}

	var email, chat domain.Notifier
	if cfg.SMTPHost != "" {
		email = notify.NewEmailNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger.Named("email"))
	}
	if api != nil {
		chat = notify.NewTelegramNotifier(api, logger.Named("telegram"))
	}
	logger.Info("notification routing", zap.Bool("email", email != nil), zap.Bool("telegram", chat != nil))
	return notify.NewRouter(email, chat)
}

// Run starts the scheduler, the HTTP API and the bot, and blocks until ctx is
// cancelled or the HTTP server fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("pricewatch service starting", zap.String("http_addr", a.server.Addr))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		_ = a.scheduler.Run(ctx)
	}()

	if a.bot != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.bot.Start(ctx); err != nil {
				a.logger.Warn("telegram bot stopped", zap.Error(err))
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	a.logger.Info("pricewatch service started")
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return nil
	case err := <-serverErr:
		return err
	}
}

// Shutdown stops the HTTP server, waits for any running cycle to finish, and
// closes the database.
func (a *App) Shutdown() {
	a.logger.Info("pricewatch service shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http server shutdown", zap.Error(err))
	}

	a.wg.Wait()
	// manual triggers from the HTTP API run outside the scheduler loop
	a.scheduler.Wait()

	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	a.logger.Info("graceful shutdown complete")
	_ = a.logger.Sync()
}
