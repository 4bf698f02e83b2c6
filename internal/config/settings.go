package config

import (
	"log/slog"
	"time"

	"phoneclaw/internal/agent"
)

// AgentSettings converts the llm section into a run snapshot.
func (c Config) AgentSettings() agent.Settings {
	settings := agent.Settings{
		APIKey:         c.LLM.APIKey,
		BaseURL:        c.LLM.BaseURL,
		Model:          c.LLM.Model,
		MaxSteps:       c.LLM.MaxSteps,
		Stream:         true,
		RequestTimeout: parseDuration(c.LLM.RequestTimeout, 0),
	}
	if c.LLM.ImageCapability != nil {
		settings.ImageCapability = *c.LLM.ImageCapability
	}
	if c.LLM.Stream != nil {
		settings.Stream = *c.LLM.Stream
	}
	return settings.Normalized()
}

// LaunchSettleDuration is the wait after launching an app, in the form
// tools.CatalogOptions expects: negative disables it.
func (d DeviceConfig) LaunchSettleDuration() time.Duration {
	settle := parseDuration(d.LaunchSettle, 2*time.Second)
	if settle == 0 {
		return -1
	}
	return settle
}

func (t TelegramConfig) PollTimeoutDuration() time.Duration {
	return parseDuration(t.PollTimeout, 30*time.Second)
}

func (t TelegramConfig) EditIntervalDuration() time.Duration {
	return parseDuration(t.EditInterval, 2*time.Second)
}

// SlogLevel maps log.level onto slog.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
