package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/device"
	"phoneclaw/internal/tools"
)

type functionTool struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  agent.ToolSchema `json:"parameters"`
}

// runTools builds the handler for the tools command.
func runTools(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		asJSON := flags.Bool("json", false, "Print the function schemas sent to the model")
		if err := flags.Parse(args); err != nil {
			return ExitUsage
		}

		registry, err := tools.NewDeviceRegistry(device.NewClient(device.Unavailable{}, nil), tools.CatalogOptions{})
		if err != nil {
			fmt.Fprintf(stderr, "Failed to build tools: %v\n", err)
			return ExitError
		}
		descs := registry.Describe()

		if *asJSON {
			defs := agent.BuildToolSchemas(descs)
			out := make([]functionTool, 0, len(defs))
			for _, def := range defs {
				out = append(out, functionTool{Type: "function", Function: functionSpec{
					Name:        def.Name,
					Description: def.Description,
					Parameters:  def.Parameters,
				}})
			}
			encoder := json.NewEncoder(stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(out); err != nil {
				fmt.Fprintf(stderr, "Failed to encode tools: %v\n", err)
				return ExitError
			}
			return ExitOK
		}

		for _, desc := range descs {
			fmt.Fprintf(stdout, "%-26s %s\n", desc.Name, desc.Description)
			for _, param := range desc.Parameters {
				required := ""
				if param.Required {
					required = ", required"
				}
				fmt.Fprintf(stdout, "    %s (%s%s): %s\n", param.Name, param.Type, required, param.Description)
			}
		}
		return ExitOK
	}
}
