package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/agent/call"
	"phoneclaw/internal/config"
	"phoneclaw/internal/device"
	"phoneclaw/internal/history"
	"phoneclaw/internal/metrics"
	"phoneclaw/internal/runs"
	"phoneclaw/internal/tools"
)

// cliSessionKey is the run key for terminal commands.
const cliSessionKey = "cli"

// newDeviceBackend is a test seam for the device backend.
var newDeviceBackend = defaultDeviceBackend

// newProvider is a test seam for the model transport.
var newProvider = func(settings agent.Settings) agent.Provider {
	return agent.NewOpenRouterProvider(settings, nil)
}

func defaultDeviceBackend(cfg config.DeviceConfig) device.Backend {
	if cfg.Backend == config.BackendNone {
		return device.Unavailable{}
	}
	return device.NewADB(cfg.ADBPath, cfg.Serial)
}

type appOptions struct {
	configPath string
	run        call.RunOptions
	logger     *slog.Logger
	// history opens the run store and records every run.
	history bool
}

// app is the wired object graph shared by the run, chat and telegram commands.
type app struct {
	cfg      config.Config
	settings *config.Store
	registry *tools.Registry
	manager  *runs.Manager
	metrics  *metrics.Metrics
	history  *history.Store
	logger   *slog.Logger
}

func openApp(ctx context.Context, opts appOptions) (*app, error) {
	path, err := resolveConfigPath(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := opts.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store := config.NewStore(path, cfg, logger)
	client := device.NewClient(newDeviceBackend(cfg.Device), logger)
	registry, err := tools.NewDeviceRegistry(client, tools.CatalogOptions{LaunchSettle: cfg.Device.LaunchSettleDuration()})
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}

	m := metrics.New()
	hooks := []call.CallHook{m.Hook()}
	var runStore *history.Store
	if opts.history && cfg.History.Path != "" {
		runStore, err = history.Open(ctx, historyPath(cfg.History.Path, path))
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		hooks = append(hooks, history.NewHook(runStore, logger))
	}

	manager, err := runs.NewManager(runs.Config{
		Registry: registry,
		Settings: store,
		NewProvider: func(settings agent.Settings) agent.Provider {
			return m.WrapProvider(newProvider(settings), settings.Stream)
		},
		Hooks:   hooks,
		Options: opts.run,
		Logger:  logger,
	})
	if err != nil {
		if runStore != nil {
			_ = runStore.Close()
		}
		return nil, err
	}
	return &app{
		cfg:      cfg,
		settings: store,
		registry: registry,
		manager:  manager,
		metrics:  m,
		history:  runStore,
		logger:   logger,
	}, nil
}

// Close stops active runs and releases the history store.
func (a *app) Close(ctx context.Context) error {
	err := a.manager.Shutdown(ctx)
	if a.history != nil {
		if closeErr := a.history.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// historyPath resolves a relative store path against the directory holding
// .phoneclaw, so runs land in one place wherever the command starts.
func historyPath(path, configPath string) string {
	if path == history.MemoryPath || filepath.IsAbs(path) || configPath == "" {
		return path
	}
	root := filepath.Dir(filepath.Dir(configPath))
	if filepath.Base(filepath.Dir(configPath)) != config.ConfigDirName {
		root = filepath.Dir(configPath)
	}
	return filepath.Join(root, path)
}
