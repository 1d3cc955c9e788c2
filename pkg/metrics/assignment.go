package metrics

import "github.com/prometheus/client_golang/prometheus"

// AssignmentMetrics tracks auto-assignment sweep outcomes.
type AssignmentMetrics struct {
	expired  prometheus.Counter
	assigned *prometheus.CounterVec
	failed   prometheus.Counter
}

// NewAssignmentMetrics registers the sweep metrics on the provided registerer.
func NewAssignmentMetrics(reg prometheus.Registerer) *AssignmentMetrics {
	if reg == nil {
		return &AssignmentMetrics{}
	}
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_expired_orders_total",
		Help: "Orders whose claim window had expired when a sweep picked them up.",
	})
	assigned := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_assigned_total",
		Help: "Orders assigned to a dispatcher, labeled by method.",
	}, []string{"method"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_failures_total",
		Help: "Orders a sweep could not assign to any dispatcher.",
	})
	reg.MustRegister(expired, assigned, failed)
	return &AssignmentMetrics{
		expired:  expired,
		assigned: assigned,
		failed:   failed,
	}
}

// AddExpired counts orders that entered a sweep past their claim window.
func (m *AssignmentMetrics) AddExpired(n int) {
	if m == nil || m.expired == nil {
		return
	}
	m.expired.Add(float64(n))
}

// IncAssigned counts a successful assignment by method (manual or auto).
func (m *AssignmentMetrics) IncAssigned(method string) {
	if m == nil || m.assigned == nil {
		return
	}
	m.assigned.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncFailed counts an order left unassigned by a sweep.
func (m *AssignmentMetrics) IncFailed() {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.Inc()
}
