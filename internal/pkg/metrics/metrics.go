// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stream_insight"

var (
	// PayloadsTotal counts stream payloads by topic and classified category.
	PayloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payloads_total",
		Help:      "Stream payloads received, by topic kind and classified category.",
	}, []string{"topic", "category"})

	// InvalidEntitiesTotal counts payloads dropped because no usable entity could be built.
	InvalidEntitiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invalid_entities_total",
		Help:      "Payloads dropped by the transformers, by entity kind.",
	}, []string{"kind"})

	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_subscriptions",
		Help:      "Live vendor stream subscriptions.",
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Live wallet sessions.",
	})

	RPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rpc_requests_total",
		Help:      "JSON-RPC requests, by method and status.",
	}, []string{"method", "status"})

	InitializeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "initialize_total",
		Help:      "Stream transport initializations, by result.",
	}, []string{"result"})
)

// ObserveRPC records the outcome of one JSON-RPC call.
func ObserveRPC(method string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RPCRequestsTotal.WithLabelValues(method, status).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
