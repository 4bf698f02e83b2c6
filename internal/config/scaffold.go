package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1

llm:
  # Prefer the PHONECLAW_API_KEY environment variable over storing the key here.
  api_key: ""
  base_url: "https://openrouter.ai/api/v1"
  model: "stepfun/step-3.5-flash:free"
  max_steps: 20
  # Send screenshots to the model. Enable only for vision-capable models.
  image_capability: false
  stream: true
  # Per-request HTTP timeout. "0s" means no limit.
  request_timeout: "0s"

device:
  # adb drives a connected Android device; none disables device tools.
  backend: "adb"
  adb_path: "adb"
  serial: ""
  launch_settle: "2s"

telegram:
  # Or set TELEGRAM_BOT_TOKEN.
  token: ""
  poll_timeout: "30s"
  edit_interval: "2s"
  allowed_chats: []

history:
  path: ".phoneclaw/history.duckdb"

metrics:
  # Listen address for /metrics, for example ":9464". Empty disables it.
  addr: ""

log:
  level: "info"
`

// Scaffold writes a commented default config to path.
func Scaffold(path string) error {
	if path == "" {
		return fmt.Errorf("config path is required")
	}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", path)
		}
		return fmt.Errorf("config file already exists at %q", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
