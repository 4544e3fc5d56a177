// Package config handles import-pipeline configuration loading and management.
package config

import (
	"time"

	"github.com/g3n/engine/math32"
)

// Config holds all pipeline settings.
type Config struct {
	Importer ImporterConfig `yaml:"importer"`
	Clipping ClippingConfig `yaml:"clipping"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ImporterConfig holds import-pipeline settings.
type ImporterConfig struct {
	// EventDataRoot and GeometriesRoot name the conventional top-level
	// groups inside a combined scene file.
	EventDataRoot  string `yaml:"event_data_root"`
	GeometriesRoot string `yaml:"geometries_root"`

	// MenuRoot prefixes menu paths of imported geometries.
	MenuRoot string `yaml:"menu_root"`

	// DracoDecoderPath locates the Draco decoder resource, resolved once
	// at startup. Empty rejects Draco-compressed files.
	DracoDecoderPath string `yaml:"draco_decoder_path"`

	// Scale applied to imported geometry unless a request overrides it.
	Scale float32 `yaml:"scale"`
}

// ClippingConfig holds the cutaway clip-plane set.
type ClippingConfig struct {
	Planes []PlaneConfig `yaml:"planes"`
}

// PlaneConfig describes one clip plane as a normal and a constant offset.
type PlaneConfig struct {
	Normal   [3]float32 `yaml:"normal"`
	Constant float32    `yaml:"constant"`
}

// FetchConfig holds remote-source settings.
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Importer: ImporterConfig{
			EventDataRoot:  "EventData",
			GeometriesRoot: "Geometries",
			Scale:          1,
		},
		Fetch: FetchConfig{
			Timeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ClipPlanes builds the shared clip-plane set from the clipping section.
func (c *Config) ClipPlanes() []*math32.Plane {
	planes := make([]*math32.Plane, 0, len(c.Clipping.Planes))
	for _, p := range c.Clipping.Planes {
		normal := math32.NewVector3(p.Normal[0], p.Normal[1], p.Normal[2])
		planes = append(planes, math32.NewPlane(normal, p.Constant))
	}
	return planes
}
