package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Item outcomes recorded per product in a cycle.
const (
	OutcomeDone    = "done"
	OutcomeErrored = "errored"
)

type Monitor struct {
	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	dueProducts   prometheus.Gauge
	items         *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	notifications *prometheus.CounterVec
}

func NewMonitor(reg prometheus.Registerer) *Monitor {
	m := &Monitor{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricewatch_cycles_total",
				Help: "Total number of monitoring cycles by result.",
			},
			[]string{"result"},
		),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pricewatch_cycle_duration_seconds",
			Help:    "Histogram of monitoring cycle durations.",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
		}),
		dueProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pricewatch_due_products",
			Help: "Products selected in the last cycle.",
		}),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricewatch_products_processed_total",
				Help: "Products processed by outcome and failing stage.",
			},
			[]string{"outcome", "stage"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricewatch_fetch_duration_seconds",
				Help:    "Histogram of price fetch durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"result"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricewatch_notifications_total",
				Help: "Price alert notifications by result.",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.cycles, m.cycleDuration, m.dueProducts, m.items, m.fetchDuration, m.notifications)
	return m
}

func (m *Monitor) CycleFinished(due int, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.cycles.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(duration.Seconds())
	m.dueProducts.Set(float64(due))
}

func (m *Monitor) ItemProcessed(outcome, stage string) {
	m.items.WithLabelValues(outcome, stage).Inc()
}

func (m *Monitor) FetchObserved(duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetchDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func (m *Monitor) NotificationSent(ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	m.notifications.WithLabelValues(result).Inc()
}

// Handler exposes the given gatherer in Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
