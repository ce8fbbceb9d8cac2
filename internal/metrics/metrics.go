// Package metrics provides Prometheus instrumentation for the trust engine.
package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustengine",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trustengine",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// FraudScansTotal counts batch fraud scans by outcome.
	FraudScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustengine",
			Name:      "fraud_scans_total",
			Help:      "Total fraud scan runs by outcome.",
		},
		[]string{"outcome"},
	)

	// FraudScanDuration observes how long a full scan takes.
	FraudScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trustengine",
		Name:      "fraud_scan_duration_seconds",
		Help:      "Duration of a full fraud scan in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
	})

	// AlertsGeneratedTotal counts alerts generated by check type and severity.
	AlertsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustengine",
			Name:      "alerts_generated_total",
			Help:      "Total fraud alerts generated by check type and severity.",
		},
		[]string{"alert_type", "severity"},
	)

	// TrustDowngradesTotal counts forced trust-level downgrades.
	TrustDowngradesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trustengine",
		Name:      "trust_downgrades_total",
		Help:      "Total trust levels forced to suspicious by the fraud detector.",
	})

	// PricingCalculationsTotal counts pricing calculations by result.
	PricingCalculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustengine",
			Name:      "pricing_calculations_total",
			Help:      "Total pricing calculations by result (ok, unavailable, error).",
		},
		[]string{"result"},
	)

	// VerificationsTotal counts recorded trust verifications.
	VerificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trustengine",
		Name:      "verifications_total",
		Help:      "Total trust verifications recorded.",
	})

	// BehavioralEventsTotal counts appended behavioral events by type.
	BehavioralEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustengine",
			Name:      "behavioral_events_total",
			Help:      "Total behavioral events appended by event type.",
		},
		[]string{"event_type"},
	)

	// ActiveWebSocketClients tracks connected operator feed clients.
	ActiveWebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trustengine",
			Name:      "active_websocket_clients",
			Help:      "Number of currently connected WebSocket clients.",
		},
	)

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustengine", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBIdleConnections tracks idle database connections.
	DBIdleConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustengine", Name: "db_idle_connections",
		Help: "Number of idle database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustengine", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustengine", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		FraudScansTotal,
		FraudScanDuration,
		AlertsGeneratedTotal,
		TrustDowngradesTotal,
		PricingCalculationsTotal,
		VerificationsTotal,
		BehavioralEventsTotal,
		ActiveWebSocketClients,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		GoroutineCount,
	)
}

// StartDBStatsCollector periodically samples sql.DBStats and runtime goroutine
// count into Prometheus gauges. Call in a goroutine; exits when ctx is done.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			DBIdleConnections.Set(float64(stats.Idle))
			DBInUseConnections.Set(float64(stats.InUse))
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
