package csiview

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is the conventional config file name next to the binary.
const DefaultConfigPath = "csiview.toml"

// FileConfig is the on-disk TOML configuration. Only the capture parameters
// and the window title are configurable; everything else is fixed.
//
// Example:
//
//	window_title = "Bench Camera"
//
//	[capture]
//	sensor_id = 1
//	capture_width = 1280
//	capture_height = 720
//	framerate = 30
//	flip_method = 2
type FileConfig struct {
	WindowTitle string        `toml:"window_title"`
	Capture     CaptureConfig `toml:"capture"`
}

// LoadConfig reads a TOML config file. Values absent from the file keep
// their defaults; zero values are treated as absent.
func LoadConfig(path string) (FileConfig, error) {
	cfg := FileConfig{
		WindowTitle: WindowTitle,
		Capture:     DefaultConfig(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("csiview: read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("csiview: parse config %s: %w", path, err)
	}

	// Zero values fall back to defaults (partial files are fine)
	if cfg.WindowTitle == "" {
		cfg.WindowTitle = WindowTitle
	}
	applyCaptureDefaults(&cfg.Capture)

	return cfg, nil
}

func applyCaptureDefaults(c *CaptureConfig) {
	if c.CaptureWidth == 0 {
		c.CaptureWidth = DefaultCaptureWidth
	}
	if c.CaptureHeight == 0 {
		c.CaptureHeight = DefaultCaptureHeight
	}
	if c.DisplayWidth == 0 {
		c.DisplayWidth = DefaultDisplayWidth
	}
	if c.DisplayHeight == 0 {
		c.DisplayHeight = DefaultDisplayHeight
	}
	if c.Framerate == 0 {
		c.Framerate = DefaultFramerate
	}
}
