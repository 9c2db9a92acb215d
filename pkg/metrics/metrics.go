package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics метрики пакетного прогона
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal           *prometheus.CounterVec
	RunsFailed          *prometheus.CounterVec
	RunDuration         *prometheus.HistogramVec
	MigrationsTotal     *prometheus.CounterVec
	UnreachableTotal    *prometheus.CounterVec
	CasesTotal          prometheus.Counter
	ReportsWrittenTotal *prometheus.CounterVec
}

// New создаёт метрики в отдельном реестре
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Number of completed algorithm runs",
		}, []string{"algorithm"}),
		RunsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_failed_total",
			Help:      "Number of failed algorithm runs",
		}, []string{"algorithm"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of one algorithm run",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"algorithm"}),
		MigrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migrations_total",
			Help:      "Number of migrated tasks",
		}, []string{"algorithm"}),
		UnreachableTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unreachable_migrations_total",
			Help:      "Number of migrations over unreachable pairs",
		}, []string{"algorithm"}),
		CasesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cases_total",
			Help:      "Number of input cases processed",
		}),
		ReportsWrittenTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_written_total",
			Help:      "Number of report files written",
		}, []string{"format"}),
	}

	registry.MustRegister(
		m.RunsTotal,
		m.RunsFailed,
		m.RunDuration,
		m.MigrationsTotal,
		m.UnreachableTotal,
		m.CasesTotal,
		m.ReportsWrittenTotal,
		NewRuntimeCollector(namespace),
	)

	return m
}

// ObserveRun фиксирует завершённый запуск
func (m *Metrics) ObserveRun(algorithm string, duration time.Duration, migrations, unreachable int) {
	m.RunsTotal.WithLabelValues(algorithm).Inc()
	m.RunDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	m.MigrationsTotal.WithLabelValues(algorithm).Add(float64(migrations))
	m.UnreachableTotal.WithLabelValues(algorithm).Add(float64(unreachable))
}

// Handler возвращает HTTP handler для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
