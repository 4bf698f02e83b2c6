package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phoneclaw/internal/config"
)

func withInput(t *testing.T, text string) {
	t.Helper()
	original := initInput
	initInput = strings.NewReader(text)
	t.Cleanup(func() { initInput = original })
}

func TestInitCommandCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := config.ConfigPath(dir)
	withInput(t, "\n")

	var out, err bytes.Buffer
	code := Run([]string{"init", "--config", configPath}, &out, &err)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (stderr %q)", ExitOK, code, err.String())
	}
	if !strings.Contains(out.String(), "Wrote") {
		t.Fatalf("expected output to include writes, got %q", out.String())
	}
	cfg, loadErr := config.Load(configPath)
	if loadErr != nil {
		t.Fatalf("scaffolded config should load: %v", loadErr)
	}
	if cfg.Device.Backend != config.BackendADB {
		t.Fatalf("unexpected backend %q", cfg.Device.Backend)
	}
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "version: 1\n")

	var out, err bytes.Buffer
	code := Run([]string{"init", "--config", configPath}, &out, &err)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no stdout output, got %q", out.String())
	}
	if !strings.Contains(err.String(), "already exists") {
		t.Fatalf("expected overwrite warning, got %q", err.String())
	}
}

func TestInitCommandCancelled(t *testing.T) {
	dir := t.TempDir()
	configPath := config.ConfigPath(dir)
	withInput(t, "n\n")

	var out, err bytes.Buffer
	code := Run([]string{"init", "--config", configPath}, &out, &err)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if _, statErr := os.Stat(configPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no config to be written")
	}
}

func TestInitCommandAddsGitignoreEntry(t *testing.T) {
	repo := t.TempDir()
	if err := os.Mkdir(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	if err := os.WriteFile(filepath.Join(repo, ".gitignore"), []byte("bin"), 0o644); err != nil {
		t.Fatalf("write .gitignore: %v", err)
	}
	withInput(t, "y\ny\n")

	var out, err bytes.Buffer
	code := Run([]string{"init", "--config", config.ConfigPath(repo)}, &out, &err)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (stderr %q)", ExitOK, code, err.String())
	}
	data, readErr := os.ReadFile(filepath.Join(repo, ".gitignore"))
	if readErr != nil {
		t.Fatalf("read .gitignore: %v", readErr)
	}
	if string(data) != "bin\n.phoneclaw/\n" {
		t.Fatalf("unexpected .gitignore %q", string(data))
	}

	updated, addErr := addGitignoreEntry(repo, config.ConfigDir(repo))
	if addErr != nil || updated {
		t.Fatalf("expected existing entry to be kept, updated=%v err=%v", updated, addErr)
	}
}

func TestGitignoreEntryRejectsOutsidePaths(t *testing.T) {
	repo := t.TempDir()
	if _, err := gitignoreEntry(repo, filepath.Dir(repo)); err == nil {
		t.Fatalf("expected error for path outside repo")
	}
}
