package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requestsCreated   prometheus.Counter
	requestsAccepted  prometheus.Counter
	requestsRejected  prometheus.Counter
	requestsCompleted prometheus.Counter
	acceptConflicts   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_requests_created_total",
			Help: "Total number of care requests created",
		}),
		requestsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_requests_accepted_total",
			Help: "Total number of care requests accepted by a professional",
		}),
		requestsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_requests_rejected_total",
			Help: "Total number of care requests rejected by all professionals",
		}),
		requestsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_requests_completed_total",
			Help: "Total number of care requests completed",
		}),
		acceptConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_accept_conflicts_total",
			Help: "Total number of accept calls that lost the race",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.requestsCreated,
			m.requestsAccepted,
			m.requestsRejected,
			m.requestsCompleted,
			m.acceptConflicts,
		)
	}
	return m
}
