package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sourcegraph/conc"

	"phoneclaw/internal/config"
	"phoneclaw/internal/telegram"
)

// telegramAPIBase is a test seam for the Bot API endpoint.
var telegramAPIBase = telegram.DefaultAPIBase

// serveContext is a test seam for the process lifetime of serving commands.
var serveContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runTelegram builds the handler for the telegram command.
func runTelegram(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .phoneclaw/config.yml)")
		noColor := fs.Bool("no-color", false, "Disable ANSI colors in logs")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
			return ExitUsage
		}

		ctx, stop := serveContext()
		defer stop()

		resolved, err := resolveConfigPath(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to locate config: %v\n", err)
			return ExitError
		}
		cfg, err := config.Load(resolved)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		if strings.TrimSpace(cfg.Telegram.Token) == "" {
			fmt.Fprintf(stderr, "Missing Telegram token (set telegram.token or %s)\n", config.EnvTelegramToken)
			return ExitError
		}
		logger := newServiceLogger(stderr, cfg.Log.SlogLevel(), *noColor)

		application, err := openApp(ctx, appOptions{configPath: resolved, logger: logger, history: true})
		if err != nil {
			logger.Error("startup failed", "err", err)
			return ExitError
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := application.Close(closeCtx); err != nil {
				logger.Warn("shutdown", "err", err)
			}
		}()
		if err := application.manager.Ready(); err != nil {
			logger.Warn("runs will be refused until an API key is configured", "env", config.EnvAPIKey)
		}
		application.settings.OnChange(func(updated config.Config) {
			logger.Info("config reloaded", "model", updated.LLM.Model, "max_steps", updated.LLM.MaxSteps)
		})

		bot, err := telegram.NewBot(telegram.Config{
			API:          telegram.NewAPI(cfg.Telegram.Token, telegramAPIBase, nil),
			Runner:       application.manager,
			PollTimeout:  cfg.Telegram.PollTimeoutDuration(),
			EditInterval: cfg.Telegram.EditIntervalDuration(),
			AllowedChats: cfg.Telegram.AllowedChats,
			Logger:       logger,
		})
		if err != nil {
			logger.Error("startup failed", "err", err)
			return ExitError
		}

		var metricsErr <-chan error
		if addr := strings.TrimSpace(cfg.Metrics.Addr); addr != "" {
			server := startMetricsServer(addr, application.metrics, logger)
			defer server.Shutdown()
			metricsErr = server.Errors()
		}

		serveCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		var wg conc.WaitGroup
		wg.Go(func() {
			if err := application.settings.Watch(serveCtx); err != nil {
				logger.Warn("config watch stopped", "err", err)
			}
		})
		wg.Go(func() {
			select {
			case err := <-metricsErr:
				logger.Error("metrics server failed", "err", err)
				cancel()
			case <-serveCtx.Done():
			}
		})

		err = bot.Run(serveCtx)
		cancel()
		wg.Wait()
		if err != nil {
			logger.Error("bot stopped", "err", err)
			return ExitError
		}
		logger.Info("telegram bot stopped")
		return ExitOK
	}
}
