// Package profiler tracks frame timing, memory statistics and render progress. Stats are
// logged periodically and exported as Prometheus metrics from the profiler's own registry.
package profiler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/noded-go/engine/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = logger.New("profiler")

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	lastFrame      time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	progress       float32

	registry        *prometheus.Registry
	frameSeconds    prometheus.Histogram
	renderProgress  prometheus.Gauge
	sceneRecompiles prometheus.Counter
	frameErrors     prometheus.Counter
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second and metrics go to a fresh registry.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	now := time.Now()
	p := &Profiler{
		lastTime:       now,
		lastFrame:      now,
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
	for _, opt := range options {
		opt(p)
	}
	if p.registry == nil {
		p.registry = prometheus.NewRegistry()
	}

	factory := promauto.With(p.registry)
	p.frameSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "noded_frame_seconds",
		Help:    "Wall time between consecutive frames.",
		Buckets: []float64{0.004, 0.008, 0.016, 0.033, 0.066, 0.125, 0.25, 0.5, 1},
	})
	p.renderProgress = factory.NewGauge(prometheus.GaugeOpts{
		Name: "noded_render_progress",
		Help: "Accumulated fraction of the max samples per pixel.",
	})
	p.sceneRecompiles = factory.NewCounter(prometheus.CounterOpts{
		Name: "noded_scene_recompiles_total",
		Help: "Scene compilations that produced a new scene.",
	})
	p.frameErrors = factory.NewCounter(prometheus.CounterOpts{
		Name: "noded_frame_errors_total",
		Help: "Frames that failed to prepare or render.",
	})
	return p
}

// SetProgress records the current render progress.
func (p *Profiler) SetProgress(progress float32) {
	p.progress = progress
	p.renderProgress.Set(float64(progress))
}

// SceneRecompiled counts one successful scene compilation.
func (p *Profiler) SceneRecompiled() {
	p.sceneRecompiles.Inc()
}

// FrameFailed counts one failed frame.
func (p *Profiler) FrameFailed() {
	p.frameErrors.Inc()
}

// Registry returns the registry the profiler's metrics are registered in.
func (p *Profiler) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the profiler's registry in the Prometheus exposition format.
func (p *Profiler) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Tick should be called once per frame to track frame timing. Every call observes the frame
// time; performance statistics are logged when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	p.frameSeconds.Observe(currentTime.Sub(p.lastFrame).Seconds())
	p.lastFrame = currentTime
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed >= p.updateInterval {
		fps := float64(p.frameCount) / elapsed.Seconds()

		runtime.ReadMemStats(&p.memStats)
		// Alloc: Bytes of allocated heap objects (live memory)
		// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
		// Sys: Total bytes of memory obtained from the OS (actual process footprint)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		sysMB := float64(p.memStats.Sys) / 1024 / 1024

		// Calculate allocation rate (MB/sec)
		allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
		allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

		// Calculate GC pause stats (last pause and max recent pause)
		gcCount := p.memStats.NumGC
		var lastPauseUs, maxPauseUs uint64
		if gcCount > 0 {
			// PauseNs is a circular buffer of last 256 GC pauses
			lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

			// Find max pause since last tick
			startIdx := p.lastGCCount
			if gcCount-startIdx > 256 {
				startIdx = gcCount - 256
			}
			for i := startIdx; i < gcCount; i++ {
				pause := p.memStats.PauseNs[i%256] / 1000
				if pause > maxPauseUs {
					maxPauseUs = pause
				}
			}
		}

		log.Infof("FPS: %.2f | Progress: %.0f%% | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			fps, p.progress*100, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

		p.frameCount = 0
		p.lastTime = currentTime
		p.lastGCCount = gcCount
		p.lastTotalAlloc = p.memStats.TotalAlloc
		return true
	}

	return false
}
