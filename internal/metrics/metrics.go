package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Its-donkey/algorave-share/internal/forms"
)

// Submission outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

// Recorder owns the form submission metrics on a private registry.
type Recorder struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	fieldErrors *prometheus.CounterVec
	sinkLatency *prometheus.HistogramVec
}

// New registers the submission metrics plus the Go runtime collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		// Labels: form (project, snippet, registration), outcome (accepted, invalid, failed)
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algorave",
			Subsystem: "form",
			Name:      "submissions_total",
			Help:      "Form submissions by outcome",
		}, []string{"form", "outcome"}),
		// Labels: form, field
		fieldErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algorave",
			Subsystem: "form",
			Name:      "field_errors_total",
			Help:      "Field validation failures reported to users",
		}, []string{"form", "field"}),
		sinkLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "algorave",
			Subsystem: "form",
			Name:      "sink_duration_seconds",
			Help:      "Time spent persisting accepted submissions",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"form"}),
	}
}

// Submission counts one submit attempt.
func (r *Recorder) Submission(variant forms.Variant, outcome string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(variant.String(), outcome).Inc()
}

// FieldErrors counts every failing field of a rejected submission.
func (r *Recorder) FieldErrors(variant forms.Variant, errs forms.FieldErrors) {
	if r == nil {
		return
	}
	for _, field := range errs.Fields() {
		r.fieldErrors.WithLabelValues(variant.String(), string(field)).Inc()
	}
}

// ObserveSink records how long the sink took for an accepted submission.
func (r *Recorder) ObserveSink(variant forms.Variant, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.sinkLatency.WithLabelValues(variant.String()).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
