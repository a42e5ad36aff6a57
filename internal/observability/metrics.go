package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/platform/envutil"
	"github.com/yungbote/roadmap-backend/internal/platform/llm"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec

	sessionEvents *prometheus.CounterVec
	adoptions     *prometheus.CounterVec

	dbStats   *prometheus.GaugeVec
	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	d := envutil.Duration("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Init builds the process-wide Metrics when METRICS_ENABLED is set, and
// returns nil otherwise. Every method is safe on a nil receiver.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New returns Metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_api_requests_total",
			Help: "API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roadmap_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roadmap_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_llm_requests_total",
			Help: "Model calls by purpose/model/outcome.",
		}, []string{"purpose", "model", "outcome"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roadmap_llm_request_duration_seconds",
			Help:    "Model call latency in seconds by purpose/model/outcome.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"purpose", "model", "outcome"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_llm_tokens_total",
			Help: "Model tokens by model/direction.",
		}, []string{"model", "direction"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_session_events_total",
			Help: "Session handshakes by event/outcome.",
		}, []string{"event", "outcome"}),
		adoptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_guest_adoptions_total",
			Help: "Guest roadmaps promoted into accounts by outcome.",
		}, []string{"outcome"}),
		dbStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "roadmap_db_pool",
			Help: "Database connection pool stats.",
		}, []string{"stat"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roadmap_redis_up",
			Help: "1 when the last Redis ping succeeded.",
		}),
		redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roadmap_redis_ping_seconds",
			Help: "Latency of the last Redis ping.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.sessionEvents, m.adoptions,
		m.dbStats, m.redisUp, m.redisPing,
	)
	return m
}

// Handler serves the exposition format, or 503 when metrics are off.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveLLM implements llm.Observer.
func (m *Metrics) ObserveLLM(purpose, model, outcome string, latency time.Duration, usage llm.Usage) {
	if m == nil {
		return
	}
	purpose = orUnknown(purpose)
	model = orUnknown(model)
	m.llmRequests.WithLabelValues(purpose, model, outcome).Inc()
	if latency > 0 {
		m.llmLatency.WithLabelValues(purpose, model, outcome).Observe(latency.Seconds())
	}
	if usage.InputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(usage.InputTokens))
	}
	if usage.OutputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(usage.OutputTokens))
	}
}

// IncSessionEvent counts login/logout outcomes ("ok", "invalid_token", ...).
func (m *Metrics) IncSessionEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.sessionEvents.WithLabelValues(orUnknown(event), orUnknown(outcome)).Inc()
}

func (m *Metrics) AddAdoptions(adopted, failed int) {
	if m == nil {
		return
	}
	if adopted > 0 {
		m.adoptions.WithLabelValues("adopted").Add(float64(adopted))
	}
	if failed > 0 {
		m.adoptions.WithLabelValues("failed").Add(float64(failed))
	}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}

// StartDBCollector samples the gorm pool until ctx ends.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.dbStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.dbStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.dbStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.dbStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
				m.dbStats.WithLabelValues("max_open_connections").Set(float64(stats.MaxOpenConnections))
			}
		}
	}()
}

// StartRedisCollector pings rdb until ctx ends. The client is not closed.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
