package cli

import (
	"bytes"
	"io"
	"testing"
)

func TestResolveRunOutput(t *testing.T) {
	cases := []struct {
		name       string
		mode       string
		verbose    bool
		tty        bool
		wantLive   bool
		wantNotice bool
		wantErr    bool
	}{
		{name: "auto on a terminal", mode: "auto", tty: true, wantLive: true},
		{name: "auto when piped", mode: "auto", wantLive: false},
		{name: "empty means auto", mode: " ", tty: true, wantLive: true},
		{name: "plain on a terminal", mode: "plain", tty: true},
		{name: "mixed case live", mode: "LIVE", tty: true, wantLive: true},
		{name: "live when piped", mode: "live", wantNotice: true},
		{name: "verbose keeps auto plain", mode: "auto", verbose: true, tty: true},
		{name: "verbose overrides live", mode: "live", verbose: true, tty: true, wantNotice: true},
		{name: "unknown mode", mode: "fancy", tty: true, wantErr: true},
	}

	original := isTerminal
	t.Cleanup(func() { isTerminal = original })

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			isTerminal = func(io.Writer) bool { return tc.tty }
			got, err := resolveRunOutput(tc.mode, tc.verbose, nil)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.mode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.live != tc.wantLive {
				t.Fatalf("expected live=%v, got %v", tc.wantLive, got.live)
			}
			if (got.notice != "") != tc.wantNotice {
				t.Fatalf("unexpected notice %q", got.notice)
			}
		})
	}
}

func TestRunRejectsUnknownUIMode(t *testing.T) {
	clearKeyEnv(t)
	var out, errOut bytes.Buffer
	code := Run([]string{"run", "--ui", "fancy", "open settings"}, &out, &errOut)
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !bytes.Contains(errOut.Bytes(), []byte(`invalid ui mode "fancy"`)) {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}

func TestFdIsTerminalFalseForBuffers(t *testing.T) {
	if fdIsTerminal(&bytes.Buffer{}) {
		t.Fatalf("expected buffer to not be a terminal")
	}
}
