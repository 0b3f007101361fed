package config

import (
	"os"

	"github.com/spf13/cast"
)

// Config holds the analysis settings shared by the CLI and the server.
type Config struct {
	AnchorName   string
	SearchRadius float64
	Tolerance    float64
	Refine       string
	Metric       string // "percentage" or "area" for the combined matrix
	TimeColumn   string
	AreaColumn   string
	RefFile      string // reference table CSV, empty for the built-in mix
	OutFile      string
	Workers      uint
	Quiet        bool
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port            string
	WorkerCount     int
	WebhookURL      string
	EnableMetrics   bool
	EnableProfiling bool
	ProfilingPort   string
}

// DefaultConfig returns a configuration with sensible defaults.
// Tolerance matches the lab default of ±0.3 min.
func DefaultConfig() *Config {
	return &Config{
		AnchorName:   "C16:0",
		SearchRadius: 1.5,
		Tolerance:    0.3,
		Metric:       "percentage",
		TimeColumn:   "time",
		AreaColumn:   "area",
		Workers:      5,
	}
}

// DefaultServerConfig returns server configuration with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:          "8080",
		WorkerCount:   5,
		EnableMetrics: true,
		ProfilingPort: "6060",
	}
}

// FromEnv overlays FAIDENT_* environment variables onto the config.
func (c *Config) FromEnv() {
	if v := os.Getenv("FAIDENT_ANCHOR"); v != "" {
		c.AnchorName = v
	}
	if v := os.Getenv("FAIDENT_TOLERANCE"); v != "" {
		c.Tolerance = cast.ToFloat64(v)
	}
	if v := os.Getenv("FAIDENT_SEARCH_RADIUS"); v != "" {
		c.SearchRadius = cast.ToFloat64(v)
	}
	if v := os.Getenv("FAIDENT_REFINE"); v != "" {
		c.Refine = v
	}
	if v := os.Getenv("FAIDENT_WORKERS"); v != "" {
		c.Workers = cast.ToUint(v)
	}
	if v := os.Getenv("FAIDENT_QUIET"); v != "" {
		c.Quiet = cast.ToBool(v)
	}
}

// FromEnv overlays FAIDENT_* environment variables onto the server config.
func (c *ServerConfig) FromEnv() {
	if v := os.Getenv("FAIDENT_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("FAIDENT_WORKER_COUNT"); v != "" {
		c.WorkerCount = cast.ToInt(v)
	}
	if v := os.Getenv("FAIDENT_WEBHOOK_URL"); v != "" {
		c.WebhookURL = v
	}
	if v := os.Getenv("FAIDENT_ENABLE_METRICS"); v != "" {
		c.EnableMetrics = cast.ToBool(v)
	}
	if v := os.Getenv("FAIDENT_ENABLE_PROFILING"); v != "" {
		c.EnableProfiling = cast.ToBool(v)
	}
	if v := os.Getenv("FAIDENT_PROFILING_PORT"); v != "" {
		c.ProfilingPort = v
	}
}
