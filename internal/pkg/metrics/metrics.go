package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homeward",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "homeward",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Tracking metrics
	Ticks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homeward",
		Subsystem: "tracker",
		Name:      "ticks_total",
		Help:      "Animation ticks by outcome (frame, fault, publish_error)",
	}, []string{"profile", "outcome"})

	TicksSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homeward",
		Subsystem: "tracker",
		Name:      "ticks_skipped_total",
		Help:      "Ticks dropped because the previous tick was still reading a position",
	}, []string{"profile"})

	LocationFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homeward",
		Subsystem: "tracker",
		Name:      "location_faults_total",
		Help:      "Position reads that failed, by fault kind",
	}, []string{"profile", "kind"})

	TickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "homeward",
		Subsystem: "tracker",
		Name:      "tick_duration_seconds",
		Help:      "Duration of one animation tick including the position read",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"profile"})

	DistanceHome = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "homeward",
		Subsystem: "tracker",
		Name:      "distance_home_miles",
		Help:      "Great-circle distance between the live position and home",
	}, []string{"profile"})

	ZoomLevel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "homeward",
		Subsystem: "tracker",
		Name:      "zoom_level",
		Help:      "Zoom level of the last rendered frame",
	}, []string{"profile"})

	LocationsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homeward",
		Subsystem: "ingress",
		Name:      "locations_received_total",
		Help:      "Device position fixes accepted, by transport",
	}, []string{"profile", "transport"})

	FramesPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homeward",
		Subsystem: "history",
		Name:      "frames_persisted_total",
		Help:      "Frames written to the history store",
	}, []string{"profile"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "homeward",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homeward",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homeward",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "homeward",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "homeward",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "homeward",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Response().StatusCode())).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics copies pool statistics into the gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}
