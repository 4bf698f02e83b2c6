package config

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

// Validate checks a normalized config. A missing API key is not an issue
// here; it is reported when a run is started.
func Validate(cfg *Config) error {
	collector := &issueCollector{}

	if cfg.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	if cfg.LLM.MaxSteps <= 0 {
		collector.add("llm.max_steps", "must be > 0")
	}
	if parsed, err := url.Parse(cfg.LLM.BaseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		collector.add("llm.base_url", fmt.Sprintf("must be an absolute http(s) URL, got %q", cfg.LLM.BaseURL))
	}
	validateDuration(collector, "llm.request_timeout", cfg.LLM.RequestTimeout, true)

	switch cfg.Device.Backend {
	case BackendADB, BackendNone:
	default:
		collector.add("device.backend", fmt.Sprintf("unsupported backend %q (want %s or %s)", cfg.Device.Backend, BackendADB, BackendNone))
	}
	validateDuration(collector, "device.launch_settle", cfg.Device.LaunchSettle, true)

	validateDuration(collector, "telegram.poll_timeout", cfg.Telegram.PollTimeout, false)
	validateDuration(collector, "telegram.edit_interval", cfg.Telegram.EditInterval, false)

	if cfg.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
			collector.add("metrics.addr", fmt.Sprintf("invalid listen address %q", cfg.Metrics.Addr))
		}
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		collector.add("log.level", fmt.Sprintf("unsupported level %q", cfg.Log.Level))
	}

	return collector.result()
}

func validateDuration(collector *issueCollector, field, value string, allowZero bool) {
	if value == "" {
		return
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		collector.add(field, fmt.Sprintf("invalid duration %q", value))
		return
	}
	if d < 0 || (!allowZero && d == 0) {
		collector.add(field, "must be positive")
	}
}
