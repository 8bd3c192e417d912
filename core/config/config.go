package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tristendillon/pytree/core/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "pytree.yaml"

type Config struct {
	Extension string   `yaml:"extension"`
	Exclude   []string `yaml:"exclude"`
	Color     *bool    `yaml:"color"`
	MaxDepth  int      `yaml:"max_depth"`
	Watch     Watch    `yaml:"watch"`
	Cache     Cache    `yaml:"cache"`
}

type Watch struct {
	Debounce time.Duration `yaml:"debounce"`
}

type Cache struct {
	MaxEntries int `yaml:"max_entries"`
}

func Default() *Config {
	color := true
	return &Config{
		Extension: ".py",
		Exclude:   []string{},
		Color:     &color,
		MaxDepth:  0,
		Watch: Watch{
			Debounce: 500 * time.Millisecond,
		},
		Cache: Cache{
			MaxEntries: 1000,
		},
	}
}

// ColorEnabled reports the configured color preference, true when unset.
func (c *Config) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}

// Load reads pytree.yaml from projectRoot, falling back to the working
// directory. A missing file yields Default().
func Load(projectRoot string) (*Config, error) {
	var paths []string
	if projectRoot != "" {
		paths = append(paths, filepath.Join(projectRoot, FileName))
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working dir: %w", err)
	}
	paths = append(paths, filepath.Join(wd, FileName))

	var filePath string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			filePath = p
			break
		}
	}

	if filePath == "" {
		logger.Debug("No config file found, using default config")
		return Default(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml %s: %w", filePath, err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filePath, err)
	}

	logger.Debug("Config file found: %s", filePath)
	logger.Debug("Config: %+v", *cfg)

	return cfg, nil
}

func (c *Config) normalize() error {
	if c.Extension == "" {
		c.Extension = ".py"
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 1000
	}
	return nil
}
