package trace

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultThresholdMicros separates OS-cache-speed from disk-speed
	// block reads. The two populations differ by an order of magnitude
	// on typical hardware, which is what makes the heuristic usable.
	DefaultThresholdMicros = 500

	// MinThresholdMicros and MaxThresholdMicros bound SetCacheThreshold.
	MinThresholdMicros = 10
	MaxThresholdMicros = 10000

	// DefaultBlockSize converts OS read bytes to block counts for the
	// verification section.
	DefaultBlockSize = 8192

	// DefaultSampleLimit caps per-query block samples.
	DefaultSampleLimit = 500
)

// Config carries session-level trace settings.
type Config struct {
	// OutputDir is where trace files are created. Empty means the OS
	// temp directory.
	OutputDir string `yaml:"output_dir"`

	// ThresholdMicros is the initial cache classification threshold.
	ThresholdMicros int `yaml:"cache_threshold_us"`

	// BlockSize is the engine's block size in bytes.
	BlockSize int `yaml:"block_size"`

	// SampleLimit caps the number of block samples kept per query.
	SampleLimit int `yaml:"sample_limit"`

	// ProbeDB points at the SQLite database an external wait probe
	// writes to. Empty disables the probe feed.
	ProbeDB string `yaml:"probe_db"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		OutputDir:       os.TempDir(),
		ThresholdMicros: DefaultThresholdMicros,
		BlockSize:       DefaultBlockSize,
		SampleLimit:     DefaultSampleLimit,
	}
}

// LoadConfig reads settings from an optional YAML file and applies
// environment overrides on top. A .env file in the working directory
// is honored when present.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QTRACE_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("QTRACE_CACHE_THRESHOLD_US"); v != "" {
		if us, err := strconv.Atoi(v); err == nil {
			cfg.ThresholdMicros = us
		}
	}
	if v := os.Getenv("QTRACE_PROBE_DB"); v != "" {
		cfg.ProbeDB = v
	}
}

// Validate checks the settings against the same rules the control
// surface enforces.
func (c Config) Validate() error {
	if c.ThresholdMicros < MinThresholdMicros ||
		c.ThresholdMicros > MaxThresholdMicros {
		return fmt.Errorf("%w: got %d", ErrThresholdRange, c.ThresholdMicros)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size must be positive: got %d", c.BlockSize)
	}
	if c.SampleLimit < 0 {
		return fmt.Errorf("sample limit must not be negative: got %d",
			c.SampleLimit)
	}
	return nil
}
