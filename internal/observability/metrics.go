package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	xpAwarded            *prometheus.CounterVec
	lessonsCompleted     prometheus.Counter
	streakCheckIns       *prometheus.CounterVec
	achievementsUnlocked prometheus.Counter
	authAttempts         *prometheus.CounterVec
	tokensSwept          prometheus.Counter
	cacheLookups         *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillquest_api_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skillquest_api_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "skillquest_api_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		xpAwarded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillquest_xp_awarded_total",
			Help: "XP granted by source.",
		}, []string{"source"}),
		lessonsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "skillquest_lessons_completed_total",
			Help: "First-time lesson completions.",
		}),
		streakCheckIns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillquest_streak_checkins_total",
			Help: "Streak check-ins by transition.",
		}, []string{"transition"}),
		achievementsUnlocked: f.NewCounter(prometheus.CounterOpts{
			Name: "skillquest_achievements_unlocked_total",
			Help: "Achievements unlocked.",
		}),
		authAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillquest_auth_attempts_total",
			Help: "Authentication attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		tokensSwept: f.NewCounter(prometheus.CounterOpts{
			Name: "skillquest_tokens_swept_total",
			Help: "Expired sessions deleted by the sweeper.",
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillquest_catalog_cache_lookups_total",
			Help: "Catalog reads by cache name.",
		}, []string{"cache"}),
	}
}

func (m *Metrics) ObserveAPI(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) IncInflight() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) DecInflight() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveXP(source string, amount int) {
	if m == nil || amount <= 0 {
		return
	}
	m.xpAwarded.WithLabelValues(source).Add(float64(amount))
}

func (m *Metrics) IncLessonCompleted() {
	if m != nil {
		m.lessonsCompleted.Inc()
	}
}

func (m *Metrics) IncStreakCheckIn(transition string) {
	if m != nil {
		m.streakCheckIns.WithLabelValues(transition).Inc()
	}
}

func (m *Metrics) AddAchievementsUnlocked(n int) {
	if m != nil && n > 0 {
		m.achievementsUnlocked.Add(float64(n))
	}
}

func (m *Metrics) IncAuth(kind string, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.authAttempts.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) AddTokensSwept(n int64) {
	if m != nil && n > 0 {
		m.tokensSwept.Add(float64(n))
	}
}

func (m *Metrics) IncCacheLookup(cache string) {
	if m != nil {
		m.cacheLookups.WithLabelValues(cache).Inc()
	}
}
