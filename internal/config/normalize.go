package config

import (
	"strings"

	"phoneclaw/internal/agent"
)

// Normalize trims values and fills empty fields with defaults.
func Normalize(cfg *Config) {
	defaults := Default()
	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}
	cfg.LLM.APIKey = strings.TrimSpace(cfg.LLM.APIKey)
	cfg.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.LLM.BaseURL), "/")
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = agent.DefaultBaseURL
	}
	cfg.LLM.Model = strings.TrimSpace(cfg.LLM.Model)
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = agent.DefaultModel
	}
	if cfg.LLM.MaxSteps == 0 {
		cfg.LLM.MaxSteps = agent.DefaultMaxSteps
	}
	if cfg.LLM.ImageCapability == nil {
		cfg.LLM.ImageCapability = defaults.LLM.ImageCapability
	}
	if cfg.LLM.Stream == nil {
		cfg.LLM.Stream = defaults.LLM.Stream
	}
	cfg.LLM.RequestTimeout = strings.TrimSpace(cfg.LLM.RequestTimeout)

	cfg.Device.Backend = strings.ToLower(strings.TrimSpace(cfg.Device.Backend))
	if cfg.Device.Backend == "" {
		cfg.Device.Backend = DefaultBackend
	}
	cfg.Device.ADBPath = strings.TrimSpace(cfg.Device.ADBPath)
	if cfg.Device.ADBPath == "" {
		cfg.Device.ADBPath = DefaultADBPath
	}
	cfg.Device.Serial = strings.TrimSpace(cfg.Device.Serial)
	cfg.Device.LaunchSettle = orDefault(cfg.Device.LaunchSettle, DefaultLaunchSettle)

	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	cfg.Telegram.PollTimeout = orDefault(cfg.Telegram.PollTimeout, DefaultPollTimeout)
	cfg.Telegram.EditInterval = orDefault(cfg.Telegram.EditInterval, DefaultEditInterval)

	cfg.History.Path = orDefault(cfg.History.Path, DefaultHistoryPath)
	cfg.Metrics.Addr = strings.TrimSpace(cfg.Metrics.Addr)
	cfg.Log.Level = strings.ToLower(orDefault(cfg.Log.Level, DefaultLogLevel))
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
