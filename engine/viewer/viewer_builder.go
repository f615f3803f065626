package viewer

import (
	"github.com/Carmen-Shannon/noded-go/engine/camera"
	"github.com/Carmen-Shannon/noded-go/engine/config"
	"github.com/Carmen-Shannon/noded-go/engine/loader"
	"github.com/Carmen-Shannon/noded-go/engine/profiler"
	"github.com/Carmen-Shannon/noded-go/engine/storage"
)

// ViewerBuilderOption is a functional option for configuring a Viewer.
type ViewerBuilderOption func(*Viewer)

// WithSettings sets the settings the render params and default controller are built from.
//
// Parameters:
//   - s: the settings
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithSettings(s config.Settings) ViewerBuilderOption {
	return func(v *Viewer) {
		v.settings = s
	}
}

// WithStorage sets where Save and Load keep the editor state.
func WithStorage(s storage.Storage) ViewerBuilderOption {
	return func(v *Viewer) {
		v.storage = s
	}
}

// WithLoader sets the texture loader. Defaults to an image loader honouring the texture
// settings.
func WithLoader(l loader.Loader) ViewerBuilderOption {
	return func(v *Viewer) {
		v.loader = l
	}
}

// WithWatcher enables texture hot reload through w.
func WithWatcher(w *loader.Watcher) ViewerBuilderOption {
	return func(v *Viewer) {
		v.watcher = w
	}
}

// WithProfiler reports recompiles, failures and progress to p.
func WithProfiler(p *profiler.Profiler) ViewerBuilderOption {
	return func(v *Viewer) {
		v.profiler = p
	}
}

// WithController replaces the camera controller built from the settings.
func WithController(c camera.Controller) ViewerBuilderOption {
	return func(v *Viewer) {
		v.controller = c
	}
}
