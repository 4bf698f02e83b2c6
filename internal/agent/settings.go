package agent

import (
	"strings"
	"time"
)

// Defaults applied when a setting is left empty.
const (
	DefaultBaseURL  = "https://openrouter.ai/api/v1"
	DefaultModel    = "stepfun/step-3.5-flash:free"
	DefaultMaxSteps = 20
)

// Settings is the immutable snapshot a run is started with.
type Settings struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxSteps        int
	ImageCapability bool
	Stream          bool
	// RequestTimeout bounds a single LLM request. Zero means no limit; the
	// step budget is the runaway guard.
	RequestTimeout time.Duration
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		BaseURL:  DefaultBaseURL,
		Model:    DefaultModel,
		MaxSteps: DefaultMaxSteps,
		Stream:   true,
	}
}

// Normalized trims fields and fills empty ones with defaults.
func (s Settings) Normalized() Settings {
	s.APIKey = strings.TrimSpace(s.APIKey)
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	s.Model = strings.TrimSpace(s.Model)
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.MaxSteps <= 0 {
		s.MaxSteps = DefaultMaxSteps
	}
	if s.RequestTimeout < 0 {
		s.RequestTimeout = 0
	}
	return s
}

// HasAPIKey reports whether the precondition for starting a run holds.
func (s Settings) HasAPIKey() bool {
	return strings.TrimSpace(s.APIKey) != ""
}
