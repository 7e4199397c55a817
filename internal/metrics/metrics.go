package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Extraction groups the pipeline counters so tests can register them on a
// private registry.
type Extraction struct {
	Runs        *prometheus.CounterVec
	LLMFailures *prometheus.CounterVec
	Dropped     *prometheus.CounterVec
	Kept        prometheus.Counter
}

func NewExtraction(reg prometheus.Registerer) *Extraction {
	m := &Extraction{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syllabus_extraction_runs_total",
				Help: "Extraction runs by the strategy that produced the result",
			},
			[]string{"method"},
		),
		LLMFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syllabus_llm_failures_total",
				Help: "LLM extraction failures that triggered the regex fallback",
			},
			[]string{"reason"},
		),
		Dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syllabus_events_dropped_total",
				Help: "Candidate events removed by a pipeline stage",
			},
			[]string{"stage"},
		),
		Kept: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "syllabus_events_kept_total",
				Help: "Events returned by the pipeline",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.LLMFailures, m.Dropped, m.Kept)
	}
	return m
}

// HTTP tracks request latency per route pattern.
type HTTP struct {
	Requests *prometheus.HistogramVec
}

func NewHTTP(reg prometheus.Registerer) *HTTP {
	m := &HTTP{
		Requests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "syllabus_http_request_duration_seconds",
				Help:    "HTTP request latency by route and status code",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"method", "route", "status"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Requests)
	}
	return m
}
