// Package config handles mmdtool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Data      DataConfig      `yaml:"data"`
	Animation AnimationConfig `yaml:"animation"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DataConfig holds asset search locations.
type DataConfig struct {
	SearchPaths []string `yaml:"search_paths"` // directories searched for textures
	Archives    []string `yaml:"archives"`     // zip archives searched after directories
}

// AnimationConfig holds motion sampling settings.
type AnimationConfig struct {
	FrameRate           float32 `yaml:"frame_rate"`
	BezierMaxIterations int     `yaml:"bezier_max_iterations"` // 0 = until tolerance
	SampleStep          float32 `yaml:"sample_step"`           // in frames
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Data: DataConfig{
			SearchPaths: []string{"."},
		},
		Animation: AnimationConfig{
			FrameRate:           30,
			BezierMaxIterations: 0,
			SampleStep:          1,
		},
	}
}
