// Package config holds the batch configuration: snapshot id layout,
// alignment constants, reference embryo metadata and execution knobs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// ConfigurationError reports configuration the engine cannot act on, such
// as an unknown resolution name or an unknown reference embryo.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Detail
}

// Reference identifies the embryo whose developmental clock every other
// embryo is aligned onto, with its acquisition metadata.
type Reference struct {
	// Name is the embryo name as derived from its property file name.
	Name string `json:"name"`
	// StartSeconds is the offset, in seconds post-fertilization, of the
	// reference's first snapshot.
	StartSeconds float64 `json:"start_seconds"`
	// TimePointIntervalSeconds is the acquisition interval between two
	// consecutive snapshots.
	TimePointIntervalSeconds float64 `json:"time_point_interval_seconds"`
}

// Config is the root batch configuration. Values are JSON so one file can
// describe a whole batch run.
type Config struct {
	// KDigits is the per-timepoint suffix width of snapshot ids.
	KDigits int `json:"k_digits"`
	// TargetVolume is the embryo volume every acquisition is rescaled to
	// by the voxelsize correction.
	TargetVolume float64 `json:"target_volume"`
	// Geometry toggles the derived surface/volume ratios and the
	// voxelsize correction (expensive).
	Geometry bool `json:"geometry"`
	// Workers bounds the per-embryo parallelism of the batch phases.
	Workers int `json:"workers"`
	// VoxelFitSamples is the number of random 2-point candidates tried by
	// the robust volume fit.
	VoxelFitSamples int `json:"voxel_fit_samples"`
	// VoxelFitSeed seeds the robust fit's sampling so reruns agree.
	VoxelFitSeed int64 `json:"voxel_fit_seed"`
	// Reference is the temporal alignment reference embryo.
	Reference Reference `json:"reference"`
}

// Default returns the standard configuration: 4-digit suffixes, a 10^6
// target volume, and the Astec-pm8 reference (segmentation starts 4 hours
// post-fertilization, one snapshot every 2 minutes).
func Default() *Config {
	return &Config{
		KDigits:         4,
		TargetVolume:    1e6,
		Workers:         runtime.NumCPU(),
		VoxelFitSamples: 100,
		VoxelFitSeed:    1,
		Reference: Reference{
			Name:                     "Astec-pm8",
			StartSeconds:             4 * 3600,
			TimePointIntervalSeconds: 2 * 60,
		},
	}
}

// Load reads a JSON configuration file over the defaults. Absent fields
// keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.KDigits <= 0 {
		return &ConfigurationError{Detail: fmt.Sprintf("k_digits must be positive, got %d", c.KDigits)}
	}
	if c.TargetVolume <= 0 {
		return &ConfigurationError{Detail: fmt.Sprintf("target_volume must be positive, got %g", c.TargetVolume)}
	}
	if c.Workers <= 0 {
		return &ConfigurationError{Detail: fmt.Sprintf("workers must be positive, got %d", c.Workers)}
	}
	if c.VoxelFitSamples <= 0 {
		return &ConfigurationError{Detail: fmt.Sprintf("voxel_fit_samples must be positive, got %d", c.VoxelFitSamples)}
	}
	if c.Reference.Name == "" {
		return &ConfigurationError{Detail: "reference embryo name is required"}
	}
	if c.Reference.TimePointIntervalSeconds <= 0 {
		return &ConfigurationError{Detail: "reference time_point_interval_seconds must be positive"}
	}
	return nil
}
