package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemState is the per-product position in a cycle.
type ItemState string

const (
	StatePending     ItemState = "pending"
	StateRefreshing  ItemState = "refreshing"
	StateMatching    ItemState = "matching"
	StateDispatching ItemState = "dispatching"
	StateDone        ItemState = "done"
	StateErrored     ItemState = "errored"
)

type CycleReport struct {
	ID           string
	Due          int
	Done         int
	Errored      int
	Notified     int
	NotifyFailed int
	Duration     time.Duration
}

type ItemResult struct {
	ProductID uint
	State     ItemState
	// FailedIn is the stage an errored product was in.
	FailedIn ItemState
	Err      error
	Dispatch DispatchResult
}

type Cycle struct {
	selector   *DueSelector
	refresher  *Refresher
	matcher    *AlertMatcher
	dispatcher *Dispatcher
	workers    int
	recorder   Recorder
	now        func() time.Time
	logger     *zap.Logger
}

type CycleOptions struct {
	// Workers is the number of products processed concurrently. Each
	// product's own stages always run in order.
	Workers  int
	Recorder Recorder
	Now      func() time.Time
}

func NewCycle(selector *DueSelector, refresher *Refresher, matcher *AlertMatcher, dispatcher *Dispatcher, opts CycleOptions, logger *zap.Logger) *Cycle {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cycle{
		selector:   selector,
		refresher:  refresher,
		matcher:    matcher,
		dispatcher: dispatcher,
		workers:    workers,
		recorder:   recorderOrNop(opts.Recorder),
		now:        now,
		logger:     logger,
	}
}

// Run performs one pass over the due set. The only error it returns is the
// due set being unavailable; per-product failures are logged and counted.
func (c *Cycle) Run(ctx context.Context) (CycleReport, error) {
	report := CycleReport{ID: uuid.NewString()}
	logger := c.logger.With(zap.String("cycle_id", report.ID))
	start := time.Now()
	logger.Info("cycle started")

	products, err := c.selector.SelectDue(ctx, c.now())
	if err != nil {
		report.Duration = time.Since(start)
		c.recorder.CycleFinished(0, report.Duration, err)
		logger.Error("cycle aborted, due set unavailable", zap.Error(err))
		return report, err
	}
	report.Due = len(products)

	for res := range c.processAll(ctx, logger, products) {
		if res.State == StateDone {
			report.Done++
		} else {
			report.Errored++
		}
		report.Notified += res.Dispatch.Sent
		report.NotifyFailed += res.Dispatch.Failed
	}

	report.Duration = time.Since(start)
	c.recorder.CycleFinished(report.Due, report.Duration, nil)
	logger.Info(
		"cycle finished",
		zap.Int("due", report.Due),
		zap.Int("done", report.Done),
		zap.Int("errored", report.Errored),
		zap.Int("notified", report.Notified),
		zap.Int("notify_failed", report.NotifyFailed),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (c *Cycle) processAll(ctx context.Context, logger *zap.Logger, products []domain.Product) <-chan ItemResult {
	results := make(chan ItemResult, len(products))
	if c.workers == 1 || len(products) <= 1 {
		for _, product := range products {
			results <- c.process(ctx, logger, product)
		}
		close(results)
		return results
	}

	jobs := make(chan domain.Product, len(products))
	for _, product := range products {
		jobs <- product
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < min(c.workers, len(products)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for product := range jobs {
				results <- c.process(ctx, logger, product)
			}
		}()
	}
	wg.Wait()
	close(results)
	return results
}

// process runs refresh, match and dispatch for one product. It never
// panics and never returns an error to the caller; the outcome is in the
// result.
func (c *Cycle) process(ctx context.Context, logger *zap.Logger, product domain.Product) (res ItemResult) {
	res = ItemResult{ProductID: product.ID, State: StatePending}
	itemLogger := logger.With(zap.Uint("product_id", product.ID), zap.String("url", product.URL))

	defer func() {
		if r := recover(); r != nil {
			res.FailedIn = res.State
			res.State = StateErrored
			res.Err = fmt.Errorf("panic: %v", r)
		}
		if res.State == StateErrored {
			c.recorder.ItemProcessed(string(StateErrored), string(res.FailedIn))
			itemLogger.Warn("product skipped", zap.String("state", string(res.FailedIn)), zap.Error(res.Err))
			return
		}
		c.recorder.ItemProcessed(string(StateDone), "")
	}()

	fail := func(err error) ItemResult {
		res.FailedIn = res.State
		res.State = StateErrored
		res.Err = err
		return res
	}

	res.State = StateRefreshing
	updated, err := c.refresher.Refresh(ctx, product.Target())
	if err != nil {
		return fail(err)
	}

	res.State = StateMatching
	alerts, err := c.matcher.FindTriggered(ctx, *updated)
	if err != nil {
		return fail(err)
	}

	if len(alerts) > 0 {
		res.State = StateDispatching
		dispatched, err := c.dispatcher.Dispatch(ctx, *updated, alerts)
		res.Dispatch = dispatched
		if err != nil {
			return fail(err)
		}
	}

	res.State = StateDone
	itemLogger.Debug("product processed", zap.Int("triggered", len(alerts)))
	return res
}
