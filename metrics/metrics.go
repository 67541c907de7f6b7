// Package metrics records validation outcomes in Prometheus. Pass an
// Observer as objectschema.ValidateOpt.Observer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	objectschema "github.com/reoring/objectschema"
)

// Observer implements objectschema.Observer with Prometheus collectors.
type Observer struct {
	documents         *prometheus.CounterVec
	documentDuration  *prometheus.HistogramVec
	validatorDuration *prometheus.HistogramVec
	validatorErrors   *prometheus.CounterVec
}

var _ objectschema.Observer = (*Observer)(nil)

// New creates the collectors and registers them with reg. A nil reg means
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &Observer{
		documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "objectschema_documents_total",
				Help: "Validated documents by schema and result",
			},
			[]string{"schema", "result"},
		),
		documentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "objectschema_document_duration_seconds",
				Help:    "Duration of whole-document validation",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"schema"},
		),
		validatorDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "objectschema_validator_duration_seconds",
				Help:    "Duration of single validator calls",
				Buckets: []float64{.00001, .0001, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"validator", "outcome"},
		),
		validatorErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "objectschema_validator_errors_total",
				Help: "Validator calls that returned an error",
			},
			[]string{"validator"},
		),
	}
	for _, c := range []prometheus.Collector{o.documents, o.documentDuration, o.validatorDuration, o.validatorErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// MustNew is New that panics on registration errors.
func MustNew(reg prometheus.Registerer) *Observer {
	o, err := New(reg)
	if err != nil {
		panic(err)
	}
	return o
}

func (o *Observer) ObserveDocument(schema string, valid bool, elapsed time.Duration) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	o.documents.WithLabelValues(schema, result).Inc()
	o.documentDuration.WithLabelValues(schema).Observe(elapsed.Seconds())
}

func (o *Observer) ObserveValidator(validator string, failed bool, elapsed time.Duration, err error) {
	outcome := "pass"
	switch {
	case err != nil:
		outcome = "error"
		o.validatorErrors.WithLabelValues(validator).Inc()
	case failed:
		outcome = "fail"
	}
	o.validatorDuration.WithLabelValues(validator, outcome).Observe(elapsed.Seconds())
}
