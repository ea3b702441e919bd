package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMonitorCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMonitor(reg)

	m.CycleFinished(3, time.Second, nil)
	m.CycleFinished(0, time.Second, errors.New("db down"))
	m.ItemProcessed(OutcomeErrored, "refreshing")
	m.NotificationSent(true)
	m.NotificationSent(true)
	m.NotificationSent(false)

	if got := testutil.ToFloat64(m.cycles.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok cycles = %v", got)
	}
	if got := testutil.ToFloat64(m.cycles.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed cycles = %v", got)
	}
	if got := testutil.ToFloat64(m.dueProducts); got != 0 {
		t.Errorf("due gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues("sent")); got != 2 {
		t.Errorf("sent = %v", got)
	}
	if got := testutil.ToFloat64(m.items.WithLabelValues(OutcomeErrored, "refreshing")); got != 1 {
		t.Errorf("errored items = %v", got)
	}
}
