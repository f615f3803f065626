package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine"
	"github.com/Carmen-Shannon/noded-go/engine/config"
	"github.com/Carmen-Shannon/noded-go/engine/loader"
	"github.com/Carmen-Shannon/noded-go/engine/profiler"
	"github.com/Carmen-Shannon/noded-go/engine/raytracer"
	"github.com/Carmen-Shannon/noded-go/engine/renderer"
	"github.com/Carmen-Shannon/noded-go/engine/storage"
	"github.com/Carmen-Shannon/noded-go/engine/viewer"
	"github.com/Carmen-Shannon/noded-go/engine/window"
	"github.com/urfave/cli"
)

// Open the editor window and render until it closes.
func runEditor(ctx *cli.Context) error {
	settings, err := loadSettings(ctx)
	if err != nil {
		return err
	}

	storagePath := common.Coalesce(ctx.String("storage"), settings.StoragePath)
	store, err := storage.NewFileStorage(storagePath)
	if err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle(settings.Window.Title),
		window.WithSize(settings.Window.Width, settings.Window.Height),
		window.WithMinSize(320, 200),
	)
	if err != nil {
		return fmt.Errorf("failed to open window: %w", err)
	}
	defer win.Close()

	rend, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(renderer.ParsePresentMode(settings.Renderer.PresentMode)),
		renderer.WithForceSoftwareRenderer(settings.Renderer.ForceSoftware),
		renderer.WithClearColor(common.ColorBlack),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer rend.Release()

	tracer, err := raytracer.New(rend,
		raytracer.WithMaxViewportResolution(settings.Renderer.MaxViewportResolution),
		raytracer.WithShaderValidation(settings.Renderer.ValidateShaders),
	)
	if err != nil {
		return err
	}
	defer tracer.Release()

	prof := profiler.NewProfiler()
	opts := []viewer.ViewerBuilderOption{
		viewer.WithSettings(settings),
		viewer.WithStorage(store),
		viewer.WithProfiler(prof),
	}
	if settings.Textures.Watch {
		watcher, err := loader.NewWatcher()
		if err != nil {
			log.Warningf("texture hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
			opts = append(opts, viewer.WithWatcher(watcher))
		}
	}

	v, err := viewer.NewViewer(tracer, opts...)
	if err != nil {
		return err
	}
	if err := v.Load(); err != nil {
		log.Warningf("graph restored with errors: %v", err)
	}

	if metricsAddr := common.Coalesce(ctx.String("metrics-addr"), settings.MetricsAddr); metricsAddr != "" {
		serveMetrics(metricsAddr, prof)
	}

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(rend),
		engine.WithViewer(v),
		engine.WithProfiler(prof),
		engine.WithProfiling(ctx.Bool("profile")),
		engine.WithRenderFrameLimit(ctx.Float64("fps")),
		engine.WithAutosave(!ctx.Bool("no-save")),
	)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Noticef("editing %s", storagePath)
	return e.Run(runCtx)
}

// serveMetrics exposes the profiler's registry until the process exits.
func serveMetrics(addr string, prof *profiler.Profiler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prof.Handler())
	go func() {
		log.Noticef("serving metrics on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server stopped: %v", err)
		}
	}()
}

// storageArg resolves the storage file from the first argument or the settings.
func storageArg(ctx *cli.Context, settings config.Settings) string {
	if ctx.NArg() > 0 {
		return ctx.Args().First()
	}
	return settings.StoragePath
}
