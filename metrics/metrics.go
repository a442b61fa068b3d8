// Package metrics exposes prometheus collectors over HTTP.
package metrics

import (
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.vocdoni.io/hub/log"
)

// Agent serves the registered collectors.
type Agent struct {
	Path string
}

// NewAgent mounts the prometheus handler on router at path.
func NewAgent(path string, router chi.Router) *Agent {
	router.Method("GET", path, promhttp.Handler())
	log.Infof("prometheus metrics ready at: %s", path)
	return &Agent{Path: path}
}

// Register the provided prometheus collector, ignoring any error returned (simply logs a Warn)
func Register(c prometheus.Collector) {
	err := prometheus.Register(c)
	if err != nil {
		log.Warnf("cannot register metrics: (%s) (%+v)", err, c)
	}
}
