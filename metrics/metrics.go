// Package metrics exports policy resolution outcomes as Prometheus metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/policytraits/policy"
	"github.com/c360studio/policytraits/trait"
)

// Error type label values.
const (
	ErrorUnrecognized = "unrecognized"
	ErrorDuplicate    = "duplicate"
	ErrorIncompatible = "incompatible"
	ErrorOther        = "other"
)

// Collector implements policy.Observer on top of Prometheus vectors.
type Collector struct {
	resolutions *prometheus.CounterVec
	errors      *prometheus.CounterVec
	explicit    prometheus.Histogram
}

var _ policy.Observer = (*Collector)(nil)

// NewCollector creates the policy metrics and registers them with reg.
// A nil reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policytraits_resolutions_total",
			Help: "Total policy resolutions by operation and outcome",
		}, []string{"operation", "outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "policytraits_resolution_errors_total",
			Help: "Total policy resolution errors by operation and error type",
		}, []string{"operation", "error_type"}),
		explicit: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "policytraits_explicit_traits",
			Help:    "Number of explicit traits per successful resolution",
			Buckets: prometheus.LinearBuckets(0, 1, trait.NumCategories+1),
		}),
	}

	if reg != nil {
		for _, m := range []prometheus.Collector{c.resolutions, c.errors, c.explicit} {
			if err := reg.Register(m); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// ObserveResolution implements policy.Observer.
func (c *Collector) ObserveResolution(op string, explicit int, err error) {
	if err != nil {
		c.resolutions.WithLabelValues(op, "error").Inc()
		c.errors.WithLabelValues(op, ErrorType(err)).Inc()
		return
	}
	c.resolutions.WithLabelValues(op, "success").Inc()
	c.explicit.Observe(float64(explicit))
}

// ErrorType classifies a resolution error for the error_type label.
func ErrorType(err error) string {
	var (
		unrecognized *trait.UnrecognizedTraitError
		duplicate    *policy.DuplicateTraitError
		incompatible *policy.IncompatiblePolicyError
	)
	switch {
	case errors.As(err, &unrecognized):
		return ErrorUnrecognized
	case errors.As(err, &duplicate):
		return ErrorDuplicate
	case errors.As(err, &incompatible):
		return ErrorIncompatible
	}
	return ErrorOther
}
