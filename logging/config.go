package logging

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config describes where lines go and how they are buffered on the way.
type Config struct {
	// Directory is created if missing.
	Directory string `yaml:"directory"`
	// FileName is opened in append mode inside Directory.
	FileName string `yaml:"file_name"`
	// Capacity of the line queue (a LockingTorus), a power of two.
	Capacity int `yaml:"capacity"`
	// PoolCapacity enables the pooled Event path when > 0; a power of two.
	PoolCapacity int `yaml:"pool_capacity"`
	// MaxLineWidth is the number of characters after which a line is wrapped.
	MaxLineWidth int `yaml:"max_line_width"`
	// TimeFormat is a time.Format layout for the line prefix.
	TimeFormat string `yaml:"time_format"`
	// IdleWait is how long Run sleeps after a pass that found nothing. Zero
	// means yield only.
	IdleWait time.Duration `yaml:"idle_wait"`
}

// DefaultConfig returns the configuration used when nothing is set:
// ./logs/latest.txt behind a 16-slot torus.
func DefaultConfig() Config {
	return Config{
		Directory:    "./logs",
		FileName:     "latest.txt",
		Capacity:     16,
		MaxLineWidth: 127,
		TimeFormat:   "15:04:05",
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	switch {
	case c.Directory == "":
		return fmt.Errorf("%w: directory is empty", ErrInvalidConfig)
	case c.FileName == "":
		return fmt.Errorf("%w: file_name is empty", ErrInvalidConfig)
	case !powerOfTwo(c.Capacity):
		return fmt.Errorf("%w: capacity %d is not a power of two", ErrInvalidConfig, c.Capacity)
	case c.PoolCapacity != 0 && !powerOfTwo(c.PoolCapacity):
		return fmt.Errorf("%w: pool_capacity %d is not a power of two", ErrInvalidConfig, c.PoolCapacity)
	case c.MaxLineWidth <= 0:
		return fmt.Errorf("%w: max_line_width must be > 0", ErrInvalidConfig)
	case c.IdleWait < 0:
		return fmt.Errorf("%w: idle_wait is negative", ErrInvalidConfig)
	}
	return nil
}

func powerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
