package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/mmd-core/internal/logger"
)

// FileName is the config file looked up in the working directory.
const FileName = "mmdtool.yaml"

// Load builds the configuration from defaults, then the config file, then
// command-line flags. The file is the -config path if given, otherwise the
// first of ./mmdtool.yaml and <ConfigDir>/config.yaml that exists.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
		cfg.Source = path
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	candidates := []string{FileName}
	if dir := ConfigDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "config.yaml"))
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory, or "" when the OS
// defines none.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "mmd-core")
}

// loadFromFile merges a YAML file into cfg. Unknown keys are errors so
// typos do not silently fall back to defaults.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports every setting the tool cannot use.
func (c *Config) Validate() error {
	var err error
	if _, lerr := logger.ParseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", lerr))
	}
	if c.Animation.FrameRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("animation.frame_rate must be positive, got %v", c.Animation.FrameRate))
	}
	if c.Animation.SampleStep <= 0 {
		err = multierr.Append(err, fmt.Errorf("animation.sample_step must be positive, got %v", c.Animation.SampleStep))
	}
	if c.Animation.BezierMaxIterations < 0 {
		err = multierr.Append(err, fmt.Errorf("animation.bezier_max_iterations must not be negative, got %d", c.Animation.BezierMaxIterations))
	}
	return err
}
