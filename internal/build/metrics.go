package build

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the build service.
type Metrics struct {
	BuildsTotal   *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
	SubmitsTotal  *prometheus.CounterVec
}

// NewMetrics registers and returns build metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "preslist_builds_total",
			Help: "Total build runs by final status.",
		}, []string{"status"}),
		BuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "preslist_build_duration_seconds",
			Help:    "Duration of build runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms .. ~100s
		}, []string{"status"}),
		SubmitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "preslist_submits_total",
			Help: "Total build submissions by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.BuildsTotal,
		m.BuildDuration,
		m.SubmitsTotal,
	)

	return m
}

func (m *Metrics) observe(r *Run) {
	if m == nil {
		return
	}
	m.BuildsTotal.WithLabelValues(string(r.Status)).Inc()
	m.BuildDuration.WithLabelValues(string(r.Status)).Observe(r.Duration)
}

func (m *Metrics) submit(result string) {
	if m == nil {
		return
	}
	m.SubmitsTotal.WithLabelValues(result).Inc()
}
