package config

import (
	"os"
	"strconv"
	"strings"

	"phoneclaw/internal/agent"
)

// Environment variables consulted before the config file.
const (
	EnvAPIKey           = "PHONECLAW_API_KEY"
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
	EnvBaseURL          = "PHONECLAW_BASE_URL"
	EnvModel            = "PHONECLAW_MODEL"
	EnvMaxSteps         = "PHONECLAW_MAX_STEPS"
	EnvTelegramToken    = "TELEGRAM_BOT_TOKEN"
)

// Default returns the built-in configuration.
func Default() Config {
	stream := true
	imageCapability := false
	return Config{
		Version: 1,
		LLM: LLMConfig{
			BaseURL:         agent.DefaultBaseURL,
			Model:           agent.DefaultModel,
			MaxSteps:        agent.DefaultMaxSteps,
			ImageCapability: &imageCapability,
			Stream:          &stream,
		},
		Device: DeviceConfig{
			Backend:      DefaultBackend,
			ADBPath:      DefaultADBPath,
			LaunchSettle: DefaultLaunchSettle,
		},
		Telegram: TelegramConfig{
			PollTimeout:  DefaultPollTimeout,
			EditInterval: DefaultEditInterval,
		},
		History: HistoryConfig{Path: DefaultHistoryPath},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// ApplyEnv overlays environment values on cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) string {
		value, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(value)
	}
	if value := get(EnvAPIKey); value != "" {
		cfg.LLM.APIKey = value
	} else if value := get(EnvOpenRouterAPIKey); value != "" {
		cfg.LLM.APIKey = value
	}
	if value := get(EnvBaseURL); value != "" {
		cfg.LLM.BaseURL = value
	}
	if value := get(EnvModel); value != "" {
		cfg.LLM.Model = value
	}
	if value := get(EnvMaxSteps); value != "" {
		if steps, err := strconv.Atoi(value); err == nil {
			cfg.LLM.MaxSteps = steps
		}
	}
	if value := get(EnvTelegramToken); value != "" {
		cfg.Telegram.Token = value
	}
}

// Overlay copies every field set in file onto cfg. Empty strings and zero
// numbers in the file leave cfg untouched.
func Overlay(cfg *Config, file Config) {
	if file.Version != 0 {
		cfg.Version = file.Version
	}
	setString(&cfg.LLM.APIKey, file.LLM.APIKey)
	setString(&cfg.LLM.BaseURL, file.LLM.BaseURL)
	setString(&cfg.LLM.Model, file.LLM.Model)
	if file.LLM.MaxSteps != 0 {
		cfg.LLM.MaxSteps = file.LLM.MaxSteps
	}
	if file.LLM.ImageCapability != nil {
		cfg.LLM.ImageCapability = file.LLM.ImageCapability
	}
	if file.LLM.Stream != nil {
		cfg.LLM.Stream = file.LLM.Stream
	}
	setString(&cfg.LLM.RequestTimeout, file.LLM.RequestTimeout)

	setString(&cfg.Device.Backend, file.Device.Backend)
	setString(&cfg.Device.ADBPath, file.Device.ADBPath)
	setString(&cfg.Device.Serial, file.Device.Serial)
	setString(&cfg.Device.LaunchSettle, file.Device.LaunchSettle)

	setString(&cfg.Telegram.Token, file.Telegram.Token)
	setString(&cfg.Telegram.PollTimeout, file.Telegram.PollTimeout)
	setString(&cfg.Telegram.EditInterval, file.Telegram.EditInterval)
	if len(file.Telegram.AllowedChats) > 0 {
		cfg.Telegram.AllowedChats = append([]int64(nil), file.Telegram.AllowedChats...)
	}

	setString(&cfg.History.Path, file.History.Path)
	setString(&cfg.Metrics.Addr, file.Metrics.Addr)
	setString(&cfg.Log.Level, file.Log.Level)
}

func setString(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}
