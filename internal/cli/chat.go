package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"phoneclaw/internal/ui/chat"
)

// runChat builds the handler for the interactive chat command.
func runChat(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .phoneclaw/config.yml)")
		noColor := fs.Bool("no-color", false, "Disable ANSI colors")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
			return ExitUsage
		}
		if !isTerminal(stdout) {
			fmt.Fprintln(stderr, "chat needs a terminal; use \"phoneclaw run\" for scripted use.")
			return ExitUsage
		}

		ctx, stop := serveContext()
		defer stop()

		application, err := openApp(ctx, appOptions{configPath: *configPath, history: true})
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

		manager := application.manager
		controller := chat.Start(stdout, chat.Options{
			Title:       "phoneclaw",
			NoColor:     *noColor,
			Interactive: true,
			Submit: func(text string, ctrl *chat.Controller) {
				handle, err := manager.Start(ctx, cliSessionKey, text, ctrl)
				if err != nil {
					ctrl.OnError(missingKeyMessage(err))
					return
				}
				result, _ := handle.Wait(context.WithoutCancel(ctx))
				ctrl.RunFinished(handle.ID, result)
			},
			Abort: func() {
				manager.Abort(cliSessionKey)
			},
		})

		select {
		case <-controller.Done():
		case <-ctx.Done():
			manager.Abort(cliSessionKey)
			controller.Close()
		}
		if err := controller.Wait(); err != nil {
			fmt.Fprintf(stderr, "UI error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
