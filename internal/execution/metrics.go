package execution

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersSubmittedMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyperexec_orders_submitted_total",
		Help: "Parent orders accepted by the engine.",
	})

	ordersTerminalMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hyperexec_orders_terminal_total",
		Help: "Parent orders that reached a terminal state.",
	}, []string{"status"})

	activeOrdersMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hyperexec_active_orders",
		Help: "Parent orders currently PENDING or RUNNING.",
	})

	slicesDispatchedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hyperexec_slices_dispatched_total",
		Help: "Venue dispatch outcomes by result.",
	}, []string{"result"})

	tickDurationMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hyperexec_tick_duration_seconds",
		Help:    "Wall time of one scheduler tick.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
)
