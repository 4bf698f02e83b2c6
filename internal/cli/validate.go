package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/config"
	"phoneclaw/internal/device"
	"phoneclaw/internal/tools"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .phoneclaw/config.yml)")
		if err := flags.Parse(args); err != nil {
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		resolved, err := resolveConfigPath(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}
		cfg, err := config.Load(resolved)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%s\n", err.Error())
			return ExitError
		}

		registry, err := tools.NewDeviceRegistry(device.NewClient(device.Unavailable{}, nil), tools.CatalogOptions{})
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}
		defs := agent.BuildToolSchemas(registry.Describe())
		if err := agent.ValidateToolSchemas(defs); err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}

		if resolved == "" {
			fmt.Fprintln(stdout, "No config file found; using defaults and environment.")
		} else {
			fmt.Fprintf(stdout, "Config OK: %s\n", resolved)
		}
		fmt.Fprintf(stdout, "Tool schemas OK: %d tools\n", len(defs))
		if !cfg.AgentSettings().HasAPIKey() {
			fmt.Fprintf(stdout, "Warning: no API key configured (set llm.api_key or %s).\n", config.EnvAPIKey)
		}
		return ExitOK
	}
}
