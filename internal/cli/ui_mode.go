package cli

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// uiMode is the value of "phoneclaw run --ui".
type uiMode string

const (
	uiAuto  uiMode = "auto"
	uiLive  uiMode = "live"
	uiPlain uiMode = "plain"
)

// runOutput says how a run is rendered: the live transcript or plain lines.
type runOutput struct {
	live   bool
	notice string
}

// isTerminal reports whether a writer is a TTY. Tests replace it.
var isTerminal = fdIsTerminal

func parseUIMode(raw string) (uiMode, error) {
	switch mode := uiMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return uiAuto, nil
	case uiAuto, uiLive, uiPlain:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid ui mode %q (expected auto|live|plain)", raw)
	}
}

// resolveRunOutput picks the renderer for a run. The verbose trace writes to
// stdout, so it always gets plain output.
func resolveRunOutput(raw string, verbose bool, stdout io.Writer) (runOutput, error) {
	mode, err := parseUIMode(raw)
	if err != nil {
		return runOutput{}, err
	}
	if verbose {
		if mode == uiLive {
			return runOutput{notice: "--verbose prints a trace; ignoring --ui live."}, nil
		}
		return runOutput{}, nil
	}
	switch mode {
	case uiPlain:
		return runOutput{}, nil
	case uiLive:
		if !isTerminal(stdout) {
			return runOutput{notice: "Live UI requested but stdout is not a TTY; falling back to plain output."}, nil
		}
		return runOutput{live: true}, nil
	default:
		return runOutput{live: isTerminal(stdout)}, nil
	}
}

func fdIsTerminal(w io.Writer) bool {
	file, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(file.Fd()))
}
