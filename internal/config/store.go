package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"phoneclaw/internal/agent"
)

// Store holds the current config. Runs take a Settings snapshot when they
// start; reloads only affect runs started afterwards.
type Store struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	cfg      Config
	onChange []func(Config)
}

// NewStore wraps an already loaded config. path may be empty when the config
// came from defaults and environment only.
func NewStore(path string, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{path: path, cfg: cfg, logger: logger}
}

// Path returns the watched file path.
func (s *Store) Path() string {
	return s.path
}

// Config returns the current config.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Settings returns the current agent settings snapshot.
func (s *Store) Settings() agent.Settings {
	return s.Config().AgentSettings()
}

// OnChange registers fn to run after every successful reload.
func (s *Store) OnChange(fn func(Config)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Reload re-reads the file. On error the previous config stays in place.
func (s *Store) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	listeners := append([]func(Config){}, s.onChange...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// Watch reloads the config whenever the file changes until ctx is done.
// The parent directory is watched so editors that replace the file by
// rename are picked up.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}
	target, err := filepath.Abs(s.path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("config reload failed", "path", s.path, "err", err)
				continue
			}
			s.logger.Info("config reloaded", "path", s.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("config watcher error", "err", err)
		}
	}
}
