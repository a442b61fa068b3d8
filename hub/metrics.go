package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.vocdoni.io/hub/metrics"
)

// Hub collectors
var (
	// HubCommitted counts committed transitions by operation.
	HubCommitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hub",
		Name:      "committed_total",
		Help:      "Committed transitions",
	}, []string{"op"})
	// HubRejected counts rejected transitions by operation and reason.
	HubRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hub",
		Name:      "rejected_total",
		Help:      "Rejected transitions",
	}, []string{"op", "reason"})
	// HubProfiles is the number of profiles created.
	HubProfiles = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hub",
		Name:      "profiles",
		Help:      "Number of profiles",
	})
)

// RegisterMetrics registers the hub collectors.
func RegisterMetrics() {
	metrics.Register(HubCommitted)
	metrics.Register(HubRejected)
	metrics.Register(HubProfiles)
}
