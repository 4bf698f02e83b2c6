package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootHelpListsPhoneCommands(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Run([]string{"help"}, &out, &errOut); code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	if errOut.Len() != 0 {
		t.Fatalf("expected no stderr output, got %q", errOut.String())
	}
	output := out.String()
	if !strings.Contains(output, "phoneclaw <command> [options]") {
		t.Fatalf("expected root usage line, got %q", output)
	}
	var names []string
	for _, cmd := range commands {
		names = append(names, cmd.Name)
		if !strings.Contains(output, cmd.Summary) {
			t.Fatalf("expected summary %q in root help", cmd.Summary)
		}
	}
	if got := strings.Join(names, ","); got != "init,validate,tools,run,chat,telegram,history" {
		t.Fatalf("unexpected command table %s", got)
	}
}

func TestNoArgsPrintsUsageAndFails(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Run(nil, &out, &errOut); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(out.String(), "Usage:") || errOut.Len() != 0 {
		t.Fatalf("unexpected output stdout=%q stderr=%q", out.String(), errOut.String())
	}
}

func TestUnknownCommandGoesToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Run([]string{"reboot"}, &out, &errOut); code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no stdout output, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "Unknown command: reboot") {
		t.Fatalf("expected unknown command error, got %q", errOut.String())
	}
}

func TestRunHelpShowsInstructionUsage(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := Run([]string{"run", "-h"}, &out, &errOut); code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	output := out.String()
	for _, want := range []string{"phoneclaw run", "--ui auto|live|plain", "\"<instruction>\"", "Run one instruction on the device"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in run help, got %q", want, output)
		}
	}
}

func TestEveryCommandHasHelp(t *testing.T) {
	for _, cmd := range commands {
		var out, errOut bytes.Buffer
		if code := Run([]string{cmd.Name, "--help"}, &out, &errOut); code != ExitOK {
			t.Fatalf("%s: expected exit %d, got %d", cmd.Name, ExitOK, code)
		}
		if !strings.HasPrefix(out.String(), "Usage:\n  phoneclaw "+cmd.Name) {
			t.Fatalf("%s: unexpected help %q", cmd.Name, out.String())
		}
	}
}
