package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the explicit application configuration. It is loaded once at
// startup and passed into constructors; nothing reads it through a global.
type Config struct {
	// HTTP
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// DataDir holds the progress file, result files, screenshots and trash.
	DataDir string `yaml:"data_dir"`

	// External tool paths.
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// Scan behavior.
	MaxWorkers      int      `yaml:"max_workers"`      // 0 = min(4, NumCPU)
	FlushSize       int      `yaml:"flush_size"`       // records per sink append
	ExcludeDirs     []string `yaml:"exclude_dirs"`     // nil = defaults
	ExcludePatterns []string `yaml:"exclude_patterns"` // nil = defaults
	LoadScoreLimit  int      `yaml:"load_score_limit"` // shrink the pool above this

	// Video analysis.
	ScreenshotCount  int     `yaml:"screenshot_count"`
	SampleInterval   float64 `yaml:"sample_interval"` // seconds between sampled frames
	ROICoverage      float64 `yaml:"roi_coverage"`    // fraction of the frame
	LowQualityCutoff int     `yaml:"low_quality_cutoff"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Host:             "0.0.0.0",
		Port:             8080,
		DataDir:          "./data",
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		MaxWorkers:       0,
		FlushSize:        50,
		LoadScoreLimit:   85,
		ScreenshotCount:  3,
		SampleInterval:   1.0,
		ROICoverage:      0.3,
		LowQualityCutoff: 40,
		LogLevel:         "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variable overrides, in that order. A missing file is not an
// error; an unreadable or malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays DISKEXPLORER_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("DISKEXPLORER_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("DISKEXPLORER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("DISKEXPLORER_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("DISKEXPLORER_FFMPEG_PATH"); v != "" {
		c.FFmpegPath = v
	}
	if v := os.Getenv("DISKEXPLORER_FFPROBE_PATH"); v != "" {
		c.FFprobePath = v
	}
	if v := os.Getenv("DISKEXPLORER_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxWorkers = n
		}
	}
	if v := os.Getenv("DISKEXPLORER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Addr returns the host:port string for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
