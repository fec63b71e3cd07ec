package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "path", "status"},
	)

	// TicksTotal counts simulation ticks processed.
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sim_ticks_total",
			Help: "Total number of simulation ticks processed",
		},
	)

	// TradesTotal counts trades emitted by the matching engine.
	TradesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sim_trades_total",
			Help: "Total number of trades executed",
		},
	)

	// OrdersQueuedTotal counts orders entering the latency queue.
	OrdersQueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sim_orders_queued_total",
			Help: "Total number of orders enqueued by agents",
		},
	)

	// OrderBookDepth tracks resting order counts per side.
	OrderBookDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sim_orderbook_depth",
			Help: "Current number of resting orders per side",
		},
		[]string{"side"},
	)

	// LatencyQueueLength tracks the number of in-flight delayed orders.
	LatencyQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sim_latency_queue_length",
			Help: "Current number of orders waiting in the latency queue",
		},
	)

	// AgentCount tracks the registry size.
	AgentCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sim_agent_count",
			Help: "Current number of registered agents",
		},
	)
)

// PrometheusMiddleware records request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Observe(duration)
	}
}
