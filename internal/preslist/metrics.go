package preslist

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the list builder.
type Metrics struct {
	DocumentsRendered *prometheus.CounterVec
	Unresolved        *prometheus.CounterVec
	MembersSkipped    prometheus.Counter
}

// NewMetrics registers and returns builder metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "preslist_documents_rendered_total",
			Help: "Documents written by format (tex, txt, pdf).",
		}, []string{"format"}),
		Unresolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "preslist_unresolved_references_total",
			Help: "Data-quality warnings by kind.",
		}, []string{"kind"}),
		MembersSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "preslist_members_skipped_total",
			Help: "Group members with no qualifying presentations.",
		}),
	}

	reg.MustRegister(
		m.DocumentsRendered,
		m.Unresolved,
		m.MembersSkipped,
	)

	return m
}

// Hooks returns an EngineHooks that increments the corresponding metrics.
func (m *Metrics) Hooks() EngineHooks {
	return EngineHooks{
		OnRendered: func(format string) {
			m.DocumentsRendered.WithLabelValues(format).Inc()
		},
		OnUnresolved: func(kind WarningKind) {
			m.Unresolved.WithLabelValues(string(kind)).Inc()
		},
		OnSkipped: func() {
			m.MembersSkipped.Inc()
		},
	}
}
