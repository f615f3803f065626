package profiler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often stats are logged.
//
// Parameters:
//   - interval: time between log lines
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithUpdateInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = interval
	}
}

// WithRegistry registers the metrics in reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.registry = reg
	}
}
