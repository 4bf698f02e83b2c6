package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"phoneclaw/internal/config"
)

// resolveConfigPath normalizes an explicit config path or finds one from CWD.
// An empty result means no config file; defaults and environment apply.
func resolveConfigPath(configPath string) (string, error) {
	if strings.TrimSpace(configPath) == "" {
		return config.ResolvePath("")
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return abs, nil
}
