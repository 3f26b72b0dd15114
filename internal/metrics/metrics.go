// Package metrics exposes prometheus counters for the gateway's request
// traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Requests counts outbound API requests by outcome: ok, timeout,
	// network, server_fault or domain.
	Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mealwise",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Outbound API requests by outcome.",
	}, []string{"outcome"})

	// TokenRefreshes counts credential refresh attempts.
	TokenRefreshes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mealwise",
		Subsystem: "gateway",
		Name:      "token_refreshes_total",
		Help:      "Credential refresh attempts.",
	})
)

func init() {
	prometheus.MustRegister(Requests, TokenRefreshes)
}
