package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads an engine tuning file and validates it. An empty path
// yields the built-in defaults. Any problem is fatal: the caller must not
// serve with a partially-loaded table.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.Finalize(); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", ErrConfig, path, err)
	}
	if err := cfg.Finalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
