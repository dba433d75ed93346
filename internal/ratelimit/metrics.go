package ratelimit

import "github.com/prometheus/client_golang/prometheus"

var decisionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "contentstudio_ratelimit_decisions_total",
		Help: "Rate limiter decisions by limiter and outcome.",
	},
	[]string{"limiter", "outcome"},
)

// RegisterMetrics exposes limiter collectors on reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(decisionsTotal)
}

func observe(limiter string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	decisionsTotal.WithLabelValues(limiter, outcome).Inc()
}
