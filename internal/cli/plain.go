package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// plainObserver prints tool activity as plain lines. The final answer is
// printed by the command once the run ends.
type plainObserver struct {
	mu  sync.Mutex
	out io.Writer
}

func newPlainObserver(out io.Writer) *plainObserver {
	return &plainObserver{out: out}
}

func (p *plainObserver) OnThinking() {}

func (p *plainObserver) OnToolCall(name string, args map[string]any) {
	p.printf("🛠 %s(%s)\n", name, plainArgs(args))
}

func (p *plainObserver) OnToolResult(name, result string) {
	line, _, _ := strings.Cut(strings.TrimSpace(result), "\n")
	if len(line) > 120 {
		line = line[:117] + "..."
	}
	p.printf("   → %s\n", line)
}

func (p *plainObserver) OnResponse(string) {}

func (p *plainObserver) OnError(string) {}

func (p *plainObserver) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func plainArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value, err := json.Marshal(args[key])
		if err != nil {
			value = []byte(fmt.Sprint(args[key]))
		}
		parts = append(parts, key+"="+string(value))
	}
	return strings.Join(parts, ", ")
}
