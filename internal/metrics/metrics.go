package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Booking exposes counters and histograms for the booking flow.
// A nil *Booking is valid and records nothing.
type Booking struct {
	commits        *prometheus.CounterVec
	commitLatency  prometheus.Histogram
	availability   *prometheus.CounterVec
	statusChanges  *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	auditDropped   prometheus.Counter
	sweepCompleted prometheus.Counter
}

func NewBooking(reg prometheus.Registerer) *Booking {
	m := &Booking{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "commits_total",
			Help:      "Booking commit attempts by outcome",
		}, []string{"outcome"}),
		commitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "commit_duration_seconds",
			Help:      "Time spent committing a booking",
			Buckets:   prometheus.DefBuckets,
		}),
		availability: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "availability_requests_total",
			Help:      "Availability lookups by cache result",
		}, []string{"cache"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "status_changes_total",
			Help:      "Appointment status transitions",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		auditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "audit",
			Name:      "dropped_events_total",
			Help:      "Audit events dropped because the queue was full",
		}),
		sweepCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "worker",
			Name:      "auto_completed_total",
			Help:      "Appointments marked completed by the sweeper",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.commits, m.commitLatency, m.availability, m.statusChanges,
		m.httpRequests, m.httpLatency, m.auditDropped, m.sweepCompleted,
	)
	return m
}

// ObserveCommit records one commit; outcome is "ok", "conflict", "invalid" or "error".
func (m *Booking) ObserveCommit(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(outcome).Inc()
	m.commitLatency.Observe(d.Seconds())
}

func (m *Booking) ObserveAvailability(cacheHit bool) {
	if m == nil {
		return
	}
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	m.availability.WithLabelValues(label).Inc()
}

func (m *Booking) ObserveStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

func (m *Booking) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Booking) AuditDropped() {
	if m == nil {
		return
	}
	m.auditDropped.Inc()
}

func (m *Booking) AutoCompleted(n int) {
	if m == nil {
		return
	}
	m.sweepCompleted.Add(float64(n))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	}
	return "2xx"
}
