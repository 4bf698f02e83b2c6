package cli

import (
	"os"
	"path/filepath"
	"testing"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/agent/agenttest"
	"phoneclaw/internal/config"
	"phoneclaw/internal/device"
	"phoneclaw/internal/device/devicetest"
)

// writeConfig writes body to <dir>/.phoneclaw/config.yml and returns the path.
func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := config.ConfigPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// clearKeyEnv keeps the developer's environment out of config loading.
func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvAPIKey, config.EnvOpenRouterAPIKey, config.EnvBaseURL, config.EnvModel, config.EnvMaxSteps, config.EnvTelegramToken} {
		t.Setenv(key, "")
	}
}

// stubDevice swaps the device backend for a recording fake.
func stubDevice(t *testing.T) *devicetest.Fake {
	t.Helper()
	fake := devicetest.New()
	original := newDeviceBackend
	newDeviceBackend = func(config.DeviceConfig) device.Backend { return fake }
	t.Cleanup(func() { newDeviceBackend = original })
	return fake
}

// stubProvider answers every run from the same script.
func stubProvider(t *testing.T, steps ...agenttest.Step) *agenttest.ScriptedProvider {
	t.Helper()
	provider := agenttest.NewScriptedProvider(steps...)
	original := newProvider
	newProvider = func(agent.Settings) agent.Provider { return provider }
	t.Cleanup(func() { newProvider = original })
	return provider
}

const testConfig = `version: 1
llm:
  api_key: "test-key"
  stream: false
device:
  backend: "adb"
  launch_settle: "0s"
history:
  path: "runs.duckdb"
`
