package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"phoneclaw/internal/config"
	"phoneclaw/internal/history"
)

// runHistory builds the handler for the history command.
func runHistory(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .phoneclaw/config.yml)")
		limit := fs.Int("limit", 20, "Number of runs to list")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if fs.NArg() > 1 {
			fmt.Fprintln(stderr, "Usage: phoneclaw history [--limit N] [run-id]")
			return ExitUsage
		}

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
		if strings.TrimSpace(cfg.History.Path) == "" {
			fmt.Fprintln(stderr, "History is disabled (history.path is empty).")
			return ExitError
		}

		ctx := context.Background()
		store, err := history.Open(ctx, historyPath(cfg.History.Path, resolved))
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open history: %v\n", err)
			return ExitError
		}
		defer func() { _ = store.Close() }()

		if fs.NArg() == 1 {
			return printTranscript(ctx, store, fs.Arg(0), stdout, stderr)
		}
		runs, err := store.ListRuns(ctx, *limit)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to list runs: %v\n", err)
			return ExitError
		}
		if len(runs) == 0 {
			fmt.Fprintln(stdout, "No runs recorded.")
			return ExitOK
		}
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tSTEPS\tTOOLS\tINSTRUCTION")
		for _, run := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
				run.ID,
				run.StartedAt.Local().Format(time.DateTime),
				run.Status,
				run.Steps,
				run.ToolCalls,
				oneLine(run.Instruction, 60),
			)
		}
		_ = tw.Flush()
		return ExitOK
	}
}

func printTranscript(ctx context.Context, store *history.Store, id string, stdout, stderr io.Writer) int {
	run, err := store.GetRun(ctx, id)
	if errors.Is(err, history.ErrRunNotFound) {
		fmt.Fprintf(stderr, "Unknown run: %s\n", id)
		return ExitError
	}
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load run: %v\n", err)
		return ExitError
	}
	messages, err := store.Transcript(ctx, id)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load transcript: %v\n", err)
		return ExitError
	}
	fmt.Fprintf(stdout, "Run %s (%s, %d steps, %s)\n", run.ID, run.Status, run.Steps, run.WallTime.Round(time.Millisecond))
	fmt.Fprintf(stdout, "Instruction: %s\n", run.Instruction)
	if run.FailureReason != "" {
		fmt.Fprintf(stdout, "Failure: %s\n", run.FailureReason)
	}
	fmt.Fprintln(stdout)
	for _, message := range messages {
		fmt.Fprintln(stdout, message.Render())
	}
	return ExitOK
}

func oneLine(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
