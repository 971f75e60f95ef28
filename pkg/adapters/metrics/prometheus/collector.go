package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tripplanner"

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	plansTotal      *prometheus.CounterVec
	planDuration    *prometheus.HistogramVec
	subTasksTotal   *prometheus.CounterVec
	subTaskDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	cacheWrites     *prometheus.CounterVec
	workerPoolIdle  prometheus.Gauge
	workerPoolBusy  prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewCollector creates a new Prometheus metrics collector registered on reg.
// A nil reg uses the default registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		plansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plans_total",
				Help:      "Total number of plan requests by outcome",
			},
			[]string{"outcome"},
		),
		planDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_duration_seconds",
				Help:      "Plan request duration in seconds",
				Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"outcome"},
		),
		subTasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subtasks_total",
				Help:      "Total number of sub-task runs by task and status",
			},
			[]string{"task", "status"},
		),
		subTaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "subtask_duration_seconds",
				Help:      "Sub-task duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 8, 10, 20},
			},
			[]string{"task"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Total number of cache lookups by result",
			},
			[]string{"result"},
		),
		cacheWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_writes_total",
				Help:      "Total number of cache writes by status",
			},
			[]string{"status"},
		),
		workerPoolIdle: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "worker_pool_idle",
				Help:      "Number of idle worker slots",
			},
		),
		workerPoolBusy: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "worker_pool_busy",
				Help:      "Number of busy worker slots",
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// RecordPlan records a finished plan request
func (c *Collector) RecordPlan(outcome string, duration time.Duration) {
	c.plansTotal.WithLabelValues(outcome).Inc()
	c.planDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordSubTask records a finished sub-task run
func (c *Collector) RecordSubTask(task, status string, duration time.Duration) {
	c.subTasksTotal.WithLabelValues(task, status).Inc()
	c.subTaskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache lookup result (hit, miss or error)
func (c *Collector) RecordCacheLookup(result string) {
	c.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheWrite records a cache write status
func (c *Collector) RecordCacheWrite(status string) {
	c.cacheWrites.WithLabelValues(status).Inc()
}

// RecordWorkerPoolStatus records worker pool slot usage
func (c *Collector) RecordWorkerPoolStatus(idle, busy int) {
	c.workerPoolIdle.Set(float64(idle))
	c.workerPoolBusy.Set(float64(busy))
}

// RecordHTTPRequest records a served HTTP request
func (c *Collector) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, status).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
