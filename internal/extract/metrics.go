package extract

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sells-group/leadcrm/internal/provider"
)

const (
	modeSingle = "single"
	modeBatch  = "batch"
)

var (
	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadcrm_extractions_total",
			Help: "Total number of lead extractions by outcome",
		},
		[]string{"mode", "outcome"},
	)

	extractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadcrm_extraction_duration_seconds",
			Help:    "Duration of lead extractions in seconds, including the provider call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
)

func observe(mode string, start time.Time, err error) {
	extractionsTotal.WithLabelValues(mode, outcome(err)).Inc()
	extractionDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	var perr *provider.ProviderError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrEmptySegment):
		return "empty_segment"
	case errors.As(err, &perr):
		return "provider_error"
	default:
		return "error"
	}
}
