package generation

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentstudio_generation_attempts_total",
			Help: "Provider attempts made by the generation gateway, by outcome.",
		},
		[]string{"provider", "outcome"},
	)
	attemptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentstudio_generation_duration_seconds",
			Help:    "Time spent in a provider including model fallback and retry.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"provider"},
	)
)

// RegisterMetrics exposes gateway collectors on reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{attemptsTotal, attemptDuration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func observeAttempt(provider string, err error, elapsed time.Duration) {
	attemptsTotal.WithLabelValues(provider, Outcome(err)).Inc()
	attemptDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// Outcome classifies an error into a short metric label.
func Outcome(err error) string {
	var (
		cfg       *ConfigurationError
		limited   *RateLimitError
		quota     *QuotaExceededError
		malformed *MalformedResponseError
		exhausted *ProviderExhaustedError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &cfg):
		return "unconfigured"
	case errors.As(err, &limited):
		return "rate_limited"
	case errors.As(err, &quota):
		return "quota"
	case errors.As(err, &malformed):
		return "malformed"
	case errors.As(err, &exhausted):
		return "exhausted"
	}
	return "error"
}
