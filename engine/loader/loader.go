// Package loader decodes image files into scene textures and watches them for changes.
package loader

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/noded-go/common"
	"github.com/Carmen-Shannon/noded-go/engine/logger"
	"github.com/Carmen-Shannon/noded-go/engine/scene"
	"github.com/anthonynsimon/bild/transform"
)

// LoaderBackendType identifies the image decoding backend to use.
type LoaderBackendType int

const (
	// BackendTypeImage selects the bild/x-image decoder backend.
	BackendTypeImage LoaderBackendType = iota
)

var supportedExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".bmp": {}, ".tif": {}, ".tiff": {}, ".webp": {},
}

type cacheKey struct {
	path     string
	scale    float32
	revision uint64
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	cache        map[cacheKey]scene.TextureData
	cacheEnabled bool
	maxDimension int
	decodes      int

	// decodePool runs Prefetch decodes; nil when decodeWorkers is 0
	decodePool    worker.DynamicWorkerPool
	decodeWorkers int

	backend loaderBackend
	log     logger.Logger
}

// Loader decodes texture images and caches the results by path, scale and revision.
type Loader interface {
	// Load decodes the image at path into a texture whose texels are multiplied by scale.
	// Cached results are returned without decoding again.
	//
	// Parameters:
	//   - path: the image file path, also used as the texture key
	//   - scale: multiplier applied to every channel
	//   - revision: hot-reload revision of the file; a new revision bypasses the cache
	//
	// Returns:
	//   - scene.TextureData: the decoded texture
	//   - error: error if the extension is unsupported or decoding fails
	Load(path string, scale float32, revision uint64) (scene.TextureData, error)

	// LoadOrPlaceholder behaves like Load but logs failures and returns the placeholder
	// texture keyed by path instead of an error.
	//
	// Parameters:
	//   - path: the image file path
	//   - scale: multiplier applied to every channel
	//   - revision: hot-reload revision of the file
	//
	// Returns:
	//   - scene.TextureData: the decoded texture or the placeholder
	LoadOrPlaceholder(path string, scale float32, revision uint64) scene.TextureData

	// LoadReader decodes an image stream. The result is keyed by name but never cached.
	//
	// Parameters:
	//   - name: the texture key
	//   - r: the reader providing encoded image data
	//   - scale: multiplier applied to every channel
	//
	// Returns:
	//   - scene.TextureData: the decoded texture
	//   - error: error if decoding fails
	LoadReader(name string, r io.Reader, scale float32) (scene.TextureData, error)

	// Evict drops every cached revision and scale of path.
	//
	// Parameters:
	//   - path: the image file path
	Evict(path string)

	// DecodeCount returns how many images have been decoded since creation.
	DecodeCount() int

	// Prefetch decodes the requested textures in parallel and caches them, so later Load
	// calls with the same path, scale and revision return immediately. Duplicates and
	// textures already cached are skipped and failures are left for Load to report. It does
	// nothing when the cache or the decode pool is disabled.
	//
	// Parameters:
	//   - requests: the textures to decode
	//
	// Returns:
	//   - int: how many textures were decoded
	Prefetch(requests []Request) int
}

// Request identifies one texture for Prefetch.
type Request struct {
	Path     string
	Scale    float32
	Revision uint64
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeImage)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:            sync.RWMutex{},
		cache:         make(map[cacheKey]scene.TextureData),
		cacheEnabled:  true,
		decodeWorkers: max(runtime.NumCPU()-1, 1),
		log:           logger.New("texture"),
	}

	switch backendType {
	case BackendTypeImage:
		l.backend = newImageLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}

	if l.decodeWorkers > 0 {
		l.decodePool = worker.NewDynamicWorkerPool(l.decodeWorkers, 64, 1*time.Second)
	}
	return l
}

func (l *loader) Load(path string, scale float32, revision uint64) (scene.TextureData, error) {
	key := cacheKey{path: path, scale: scale, revision: revision}
	if l.cacheEnabled {
		l.mu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.mu.RUnlock()
			return cached, nil
		}
		l.mu.RUnlock()
	}

	if err := checkExtension(path); err != nil {
		return scene.TextureData{}, err
	}

	img, err := l.backend.Decode(path)
	if err != nil {
		return scene.TextureData{}, fmt.Errorf("failed to load texture %s: %w", path, err)
	}

	data := l.toTextureData(img, path, scale, revision)
	l.log.Debugf("decoded %s (%dx%d, scale %.2f, revision %d)", path, data.Width, data.Height, scale, revision)

	l.mu.Lock()
	l.decodes++
	if l.cacheEnabled {
		l.cache[key] = data
	}
	l.mu.Unlock()

	return data, nil
}

func (l *loader) LoadOrPlaceholder(path string, scale float32, revision uint64) scene.TextureData {
	data, err := l.Load(path, scale, revision)
	if err != nil {
		l.log.Errorf("%v; using placeholder", err)
		return Placeholder(path, scale, revision)
	}
	return data
}

func (l *loader) LoadReader(name string, r io.Reader, scale float32) (scene.TextureData, error) {
	img, err := l.backend.DecodeReader(r)
	if err != nil {
		return scene.TextureData{}, fmt.Errorf("failed to load texture from reader %q: %w", name, err)
	}

	l.mu.Lock()
	l.decodes++
	l.mu.Unlock()

	return l.toTextureData(img, name, scale, 0), nil
}

func (l *loader) Evict(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.cache {
		if key.path == path {
			delete(l.cache, key)
		}
	}
}

func (l *loader) DecodeCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.decodes
}

func (l *loader) Prefetch(requests []Request) int {
	if !l.cacheEnabled || l.decodePool == nil {
		return 0
	}

	// The pool's Wait blocks until workers idle out, so a WaitGroup marks the end of the batch.
	var wg sync.WaitGroup
	var decoded atomic.Int32
	seen := make(map[cacheKey]struct{}, len(requests))
	for i, req := range requests {
		key := cacheKey{path: req.Path, scale: req.Scale, revision: req.Revision}
		if _, ok := seen[key]; ok || l.cached(key) {
			continue
		}
		seen[key] = struct{}{}

		wg.Add(1)
		l.decodePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				if _, err := l.Load(req.Path, req.Scale, req.Revision); err != nil {
					return nil, err
				}
				decoded.Add(1)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return int(decoded.Load())
}

func (l *loader) cached(key cacheKey) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.cache[key]
	return ok
}

// toTextureData converts a decoded image into scaled float texels, downsizing first when
// the image exceeds the configured maximum dimension.
func (l *loader) toTextureData(img image.Image, key string, scale float32, revision uint64) scene.TextureData {
	bounds := img.Bounds()
	if w, h := fitWithin(bounds.Dx(), bounds.Dy(), l.maxDimension); w != bounds.Dx() || h != bounds.Dy() {
		l.log.Infof("resizing %s from %dx%d to %dx%d", key, bounds.Dx(), bounds.Dy(), w, h)
		img = transform.Resize(img, w, h, transform.Linear)
		bounds = img.Bounds()
	}

	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([][3]float32, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels = append(pixels, common.Color{
				float32(r) / 0xffff,
				float32(g) / 0xffff,
				float32(b) / 0xffff,
			}.Scale(scale))
		}
	}

	return scene.TextureData{
		Pixels:   pixels,
		Width:    uint32(width),
		Height:   uint32(height),
		Key:      common.Ptr(key),
		Scale:    scale,
		Revision: revision,
	}
}

// fitWithin scales w and h down proportionally so neither exceeds limit. A limit of
// zero or less disables resizing.
func fitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

func checkExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedExtensions[ext]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// Placeholder returns the 2x2 magenta and black checker used when a texture cannot be
// loaded. It carries the requested key so later compiles reuse it instead of retrying.
//
// Parameters:
//   - key: the path that failed to load
//   - scale: the requested scale
//   - revision: the requested revision
//
// Returns:
//   - scene.TextureData: the placeholder texture
func Placeholder(key string, scale float32, revision uint64) scene.TextureData {
	return scene.TextureData{
		Pixels: [][3]float32{
			common.ColorMagenta, common.ColorBlack,
			common.ColorBlack, common.ColorMagenta,
		},
		Width:    2,
		Height:   2,
		Key:      common.Ptr(key),
		Scale:    scale,
		Revision: revision,
	}
}
