// Package metrics exposes Prometheus instrumentation for the LED engine.
//
// All collectors live on a package-level registry so the sysfs layer can
// count writes without holding a reference to anything, and the API server
// can serve the registry through promhttp.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// SysfsWrites counts attribute writes that actually hit the kernel.
	SysfsWrites = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "indicatord_sysfs_writes_total",
		Help: "Number of writes issued to sysfs LED control files",
	})

	// SysfsWriteErrors counts failed or short attribute writes.
	SysfsWriteErrors = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "indicatord_sysfs_write_errors_total",
		Help: "Number of sysfs LED control writes that failed or were short",
	})

	// PatternChanges counts accepted logical LED state changes.
	PatternChanges = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "indicatord_pattern_changes_total",
		Help: "Number of logical LED state changes accepted by the engine",
	})

	// ProbeAttempts counts backend probe attempts by outcome.
	ProbeAttempts = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "indicatord_backend_probe_attempts_total",
		Help: "Number of sysfs backend probe attempts by backend and outcome",
	}, []string{"backend", "outcome"})

	// CurrentStyle reports the active pattern style
	// (0=off, 1=static, 2=blink, 3=breath).
	CurrentStyle = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "indicatord_led_style",
		Help: "Currently active LED pattern style (0=off 1=static 2=blink 3=breath)",
	})
)

// Handler returns an http.Handler serving the package registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
