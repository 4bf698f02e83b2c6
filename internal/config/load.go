package config

import (
	"fmt"
	"os"
)

// Load builds the effective config: defaults, then environment, then the
// file at path when path is non-empty. The result is normalized and validated.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	ApplyEnv(&cfg, lookup)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		file, err := Parse(data)
		if err != nil {
			return Config{}, err
		}
		Overlay(&cfg, file)
	}
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
