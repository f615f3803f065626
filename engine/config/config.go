// Package config holds the application settings. Settings are read from a TOML file at
// start-up and mirrored as JSON in storage so edits made in the editor survive restarts.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Carmen-Shannon/noded-go/engine/raytracer"
	"github.com/Carmen-Shannon/noded-go/engine/sky"
	"github.com/pelletier/go-toml/v2"
)

type WindowSettings struct {
	Title  string `toml:"title" json:"title"`
	Width  int    `toml:"width" json:"width"`
	Height int    `toml:"height" json:"height"`
}

type RendererSettings struct {
	// MaxViewportResolution is the pixel capacity of the accumulation buffer.
	MaxViewportResolution uint32 `toml:"max_viewport_resolution" json:"max_viewport_resolution"`
	// PresentMode is "vsync" or "uncapped".
	PresentMode     string `toml:"present_mode" json:"present_mode"`
	ForceSoftware   bool   `toml:"force_software" json:"force_software"`
	ValidateShaders bool   `toml:"validate_shaders" json:"validate_shaders"`
}

type CameraSettings struct {
	MoveSpeed        float32 `toml:"move_speed" json:"move_speed"`
	BoostMultiplier  float32 `toml:"boost_multiplier" json:"boost_multiplier"`
	MouseSensitivity float32 `toml:"mouse_sensitivity" json:"mouse_sensitivity"`
	ZoomSpeed        float32 `toml:"zoom_speed" json:"zoom_speed"`
}

type TextureSettings struct {
	// MaxDimension downsizes larger textures on load; 0 keeps the source size.
	MaxDimension int  `toml:"max_dimension" json:"max_dimension"`
	Watch        bool `toml:"watch" json:"watch"`
}

// Settings is the full application configuration.
type Settings struct {
	Window   WindowSettings           `toml:"window" json:"window"`
	Renderer RendererSettings         `toml:"renderer" json:"renderer"`
	Sampling raytracer.SamplingParams `toml:"sampling" json:"sampling"`
	Sky      sky.Params               `toml:"sky" json:"sky"`
	Camera   CameraSettings           `toml:"camera" json:"camera"`
	Textures TextureSettings          `toml:"textures" json:"textures"`

	LogLevel    string `toml:"log_level" json:"log_level"`
	MetricsAddr string `toml:"metrics_addr" json:"metrics_addr"`
	StoragePath string `toml:"storage_path" json:"storage_path"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Title:  "noded",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererSettings{
			MaxViewportResolution: raytracer.DefaultMaxViewportResolution,
			PresentMode:           "vsync",
			ValidateShaders:       true,
		},
		Sampling: raytracer.DefaultSamplingParams(),
		Sky:      sky.DefaultParams(),
		Camera: CameraSettings{
			MoveSpeed:        2,
			BoostMultiplier:  4,
			MouseSensitivity: 0.2,
			ZoomSpeed:        2,
		},
		Textures: TextureSettings{
			MaxDimension: 2048,
			Watch:        true,
		},
		LogLevel:    "info",
		StoragePath: "noded.toml",
	}
}

// Load reads settings from a TOML file. Keys absent from the file keep their defaults and
// a missing file yields Default.
//
// Parameters:
//   - path: the settings file, or "" for defaults
//
// Returns:
//   - Settings: the loaded settings
//   - error: an error if the file cannot be read, parsed or fails validation
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Default(), fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings as TOML.
func (s Settings) Save(path string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return nil
}

// Validate checks the sampling and sky defaults with the same rules the raytracer applies
// each frame.
func (s Settings) Validate() error {
	p := raytracer.DefaultRenderParams(1, 1)
	p.Sampling = s.Sampling
	p.Sky = s.Sky
	if err := p.Validate(); err != nil {
		return err
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", s.Window.Width, s.Window.Height)
	}
	return nil
}

// MarshalJSONString encodes the settings for the "settings" storage key.
func (s Settings) MarshalJSONString() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSONString decodes settings stored by MarshalJSONString over the defaults.
func FromJSONString(data string) (Settings, error) {
	s := Default()
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return Default(), fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Default(), err
	}
	return s, nil
}
