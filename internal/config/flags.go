package config

import (
	"flag"
	"path/filepath"
)

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagData   = flag.String("data", "", "Extra texture search paths, separated by the OS list separator")
	flagFPS    = flag.Float64("fps", 0, "Motion frame rate")
	flagLog    = flag.String("log", "", "Log file path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLog != "" {
		cfg.Logging.LogFile = *flagLog
	}
	if *flagData != "" {
		cfg.Data.SearchPaths = append(filepath.SplitList(*flagData), cfg.Data.SearchPaths...)
	}
	if *flagFPS > 0 {
		cfg.Animation.FrameRate = float32(*flagFPS)
	}
}
