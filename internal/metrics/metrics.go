// Package metrics exposes counters for the public registration flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeInvalid  = "invalid"
	OutcomeFull     = "full"
	OutcomeFailed   = "failed"
)

type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	registrants prometheus.Counter
	feesQuoted  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "retiro",
			Name:      "submissions_total",
			Help:      "Registration submissions by outcome.",
		}, []string{"outcome"}),
		registrants: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "retiro",
			Name:      "registrants_created_total",
			Help:      "Registrant rows stored by accepted submissions.",
		}),
		feesQuoted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "retiro",
			Name:      "fees_quoted_brl_total",
			Help:      "Sum of fees quoted to accepted submissions, in BRL.",
		}),
	}
	m.registry.MustRegister(m.submissions, m.registrants, m.feesQuoted)
	return m
}

// Submission records the outcome of one submission. Nil receivers are no-ops.
func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// Accepted records the rows and fees of an accepted submission.
func (m *Metrics) Accepted(registrants, totalFee int) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(OutcomeAccepted).Inc()
	m.registrants.Add(float64(registrants))
	m.feesQuoted.Add(float64(totalFee))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
