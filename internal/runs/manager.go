// Package runs owns the lifecycle of agent runs: at most one active run per
// session key, with a new run for a busy key aborting and replacing the old one.
package runs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/agent/call"
	"phoneclaw/internal/tools"
)

// SettingsSource hands out the settings snapshot a new run starts with.
type SettingsSource interface {
	Settings() agent.Settings
}

// StaticSettings is a SettingsSource that never changes.
type StaticSettings agent.Settings

// Settings returns the fixed snapshot.
func (s StaticSettings) Settings() agent.Settings {
	return agent.Settings(s)
}

// ProviderFactory builds the model provider for one run.
type ProviderFactory func(settings agent.Settings) agent.Provider

// OpenRouterFactory returns a factory for the OpenRouter-compatible transport.
func OpenRouterFactory(client agent.HTTPDoer) ProviderFactory {
	return func(settings agent.Settings) agent.Provider {
		return agent.NewOpenRouterProvider(settings, client)
	}
}

// Config wires a Manager.
type Config struct {
	Registry    *tools.Registry
	Settings    SettingsSource
	NewProvider ProviderFactory
	Hooks       []call.CallHook
	// Options is the template for every run; RunID and Observer are set per run.
	Options call.RunOptions
	Logger  *slog.Logger
}

// Manager maps session keys to their active run.
type Manager struct {
	registry    *tools.Registry
	settings    SettingsSource
	newProvider ProviderFactory
	hooks       []call.CallHook
	options     call.RunOptions
	logger      *slog.Logger

	mu     sync.Mutex
	active map[string]*Handle
	wg     conc.WaitGroup
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if cfg.Settings == nil {
		return nil, fmt.Errorf("settings source is required")
	}
	if cfg.NewProvider == nil {
		cfg.NewProvider = OpenRouterFactory(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Options.TokenCounter == nil {
		cfg.Options.TokenCounter = agent.ApproxTokenCount
	}
	return &Manager{
		registry:    cfg.Registry,
		settings:    cfg.Settings,
		newProvider: cfg.NewProvider,
		hooks:       cfg.Hooks,
		options:     cfg.Options,
		logger:      cfg.Logger,
		active:      map[string]*Handle{},
	}, nil
}

// Start launches a run for key. A missing API key fails before anything
// starts. An active run for the same key is aborted and awaited first.
func (m *Manager) Start(ctx context.Context, key, text string, observer call.Observer) (*Handle, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("session key is required")
	}
	settings := m.settings.Settings().Normalized()
	if !settings.HasAPIKey() {
		return nil, agent.ErrMissingAPIKey
	}
	runID := uuid.NewString()
	session, err := agent.StartSession(key, settings, m.registry.Describe())
	if err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithCancel(ctx)
	handle := &Handle{
		ID:      runID,
		Key:     key,
		session: session,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	preempted, err := m.install(ctx, handle)
	if err != nil {
		cancel()
		return nil, err
	}
	handle.Preempted = preempted

	opts := m.options
	opts.RunID = runID
	opts.Observer = observer
	provider := m.newProvider(settings)
	m.logger.Info("run started", "run_id", runID, "key", key, "model", settings.Model, "preempted", preempted)
	m.wg.Go(func() {
		defer m.release(handle)
		var catcher panics.Catcher
		catcher.Try(func() {
			handle.result, handle.err = call.RunCall(runCtx, session, provider, m.registry, text, opts, m.hooks)
		})
		if recovered := catcher.Recovered(); recovered != nil {
			handle.err = recovered.AsError()
			handle.result = call.CallResult{Status: call.StatusFailed, Output: "❌ Error: " + handle.err.Error(), FailureReason: "panic"}
		}
		m.logger.Info("run finished", "run_id", runID, "key", key, "status", handle.result.Status, "steps", handle.result.Metrics.Steps, "wall_time", handle.result.Metrics.WallTime)
	})
	return handle, nil
}

// install aborts any active run for the handle's key, waits for it to stop
// and registers the handle in its place.
func (m *Manager) install(ctx context.Context, handle *Handle) (bool, error) {
	preempted := false
	for {
		m.mu.Lock()
		prior := m.active[handle.Key]
		if prior == nil || prior.finished() {
			m.active[handle.Key] = handle
			m.mu.Unlock()
			return preempted, nil
		}
		m.mu.Unlock()

		preempted = true
		prior.Abort()
		select {
		case <-prior.done:
		case <-ctx.Done():
			return preempted, ctx.Err()
		}
	}
}

// release closes the handle and drops it from the table if still current.
func (m *Manager) release(handle *Handle) {
	handle.cancel()
	close(handle.done)
	m.mu.Lock()
	if m.active[handle.Key] == handle {
		delete(m.active, handle.Key)
	}
	m.mu.Unlock()
}

// Ready reports agent.ErrMissingAPIKey when a run could not start.
func (m *Manager) Ready() error {
	if !m.settings.Settings().Normalized().HasAPIKey() {
		return agent.ErrMissingAPIKey
	}
	return nil
}

// Running reports whether key has an active run.
func (m *Manager) Running(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	handle := m.active[key]
	return handle != nil && !handle.finished()
}

// Abort stops the active run for key. It reports whether there was one.
func (m *Manager) Abort(key string) bool {
	m.mu.Lock()
	handle := m.active[key]
	m.mu.Unlock()
	if handle == nil || handle.finished() {
		return false
	}
	handle.Abort()
	return true
}

// Shutdown aborts every active run and waits for them to finish.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	active := make([]*Handle, 0, len(m.active))
	for _, handle := range m.active {
		active = append(active, handle)
	}
	m.mu.Unlock()
	for _, handle := range active {
		handle.Abort()
	}
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
