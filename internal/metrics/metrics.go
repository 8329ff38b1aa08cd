package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ColetRequests counts requests issued against the Colet backend API.
var ColetRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "clt400tt",
		Name:      "colet_requests_total",
		Help:      "Requests issued to the Colet backend, by method and HTTP status.",
	},
	[]string{"method", "status"},
)

// Lookups counts reference-data lookups by entity and outcome
// (found, not_found, error).
var Lookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "clt400tt",
		Name:      "lookups_total",
		Help:      "Reference-data lookups, by entity and outcome.",
	},
	[]string{"entidade", "resultado"},
)

// Lancamentos counts transaction submissions by event code and outcome.
var Lancamentos = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "clt400tt",
		Name:      "lancamentos_total",
		Help:      "Transaction submissions, by event code and outcome.",
	},
	[]string{"evento", "resultado"},
)

// HTTPRequests counts requests served by the terminal API itself.
var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "clt400tt",
		Name:      "http_requests_total",
		Help:      "Terminal API requests, by route, method and status code.",
	},
	[]string{"route", "method", "code"},
)
