package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/agent/call"
	"phoneclaw/internal/config"
	"phoneclaw/internal/runs"
	"phoneclaw/internal/ui/chat"
)

// shutdownTimeout bounds how long a command waits for runs to stop.
const shutdownTimeout = 10 * time.Second

// runRun builds the handler for the run command.
func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .phoneclaw/config.yml)")
		uiMode := fs.String("ui", "auto", "UI mode: auto|live|plain")
		verbose := fs.Bool("verbose", false, "Verbose logging")
		logPath := fs.String("log", "", "Write verbose logs to a file")
		noColor := fs.Bool("no-color", false, "Disable ANSI colors")
		noHistory := fs.Bool("no-history", false, "Do not record the run in history")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		text := strings.TrimSpace(strings.Join(fs.Args(), " "))
		if text == "" {
			fmt.Fprintln(stderr, "Usage: phoneclaw run \"<instruction>\"")
			return ExitUsage
		}

		output, err := resolveRunOutput(*uiMode, *verbose, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if output.notice != "" {
			fmt.Fprintln(stderr, output.notice)
		}

		logFile, err := openLogFile(*logPath)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitError
		}
		if logFile != nil {
			defer func() { _ = logFile.Close() }()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var logger *slog.Logger
		if *verbose {
			logger = newServiceLogger(stderr, slog.LevelDebug, *noColor)
		}
		opts := call.RunOptions{
			Verbose:       *verbose,
			VerboseWriter: stdout,
			NoColor:       *noColor,
		}
		if logFile != nil {
			opts.VerboseLogWriter = logFile
		}
		application, err := openApp(ctx, appOptions{
			configPath: *configPath,
			run:        opts,
			logger:     logger,
			history:    !*noHistory,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Failed to start: %v\n", err)
			return ExitError
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			_ = application.Close(closeCtx)
		}()

		if err := application.manager.Ready(); err != nil {
			fmt.Fprintln(stderr, missingKeyMessage(err))
			return ExitError
		}

		var result call.CallResult
		if output.live {
			result, err = runLive(ctx, application.manager, text, stdout, *noColor)
		} else {
			result, err = runPlain(ctx, application.manager, text, stdout)
		}
		if result.Status == "" {
			fmt.Fprintf(stderr, "Run failed: %v\n", err)
			return ExitError
		}
		fmt.Fprintln(stdout, result.Output)
		return exitCodeFor(result.Status)
	}
}

func runPlain(ctx context.Context, manager *runs.Manager, text string, stdout io.Writer) (call.CallResult, error) {
	handle, err := manager.Start(ctx, cliSessionKey, text, newPlainObserver(stdout))
	if err != nil {
		return call.CallResult{}, err
	}
	return handle.Wait(context.WithoutCancel(ctx))
}

// runLive shows one run in the chat UI. Leaving the UI early aborts the run.
func runLive(ctx context.Context, manager *runs.Manager, text string, stdout io.Writer, noColor bool) (call.CallResult, error) {
	controller := chat.Start(stdout, chat.Options{
		Title:   "phoneclaw run",
		NoColor: noColor,
	})
	handle, err := manager.Start(ctx, cliSessionKey, text, controller)
	if err != nil {
		controller.Close()
		_ = controller.Wait()
		return call.CallResult{}, err
	}
	controller.RunStarted(handle.ID, text)

	select {
	case <-handle.Done():
	case <-controller.Done():
		handle.Abort()
	}
	result, err := handle.Wait(context.WithoutCancel(ctx))
	controller.RunFinished(handle.ID, result)
	controller.Close()
	if uiErr := controller.Wait(); uiErr != nil && err == nil {
		err = uiErr
	}
	return result, err
}

func exitCodeFor(status call.Status) int {
	if status == call.StatusCompleted {
		return ExitOK
	}
	return ExitError
}

func openLogFile(path string) (io.WriteCloser, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

func missingKeyMessage(err error) string {
	if errors.Is(err, agent.ErrMissingAPIKey) {
		return fmt.Sprintf("%v (set llm.api_key or %s)", err, config.EnvAPIKey)
	}
	return err.Error()
}
