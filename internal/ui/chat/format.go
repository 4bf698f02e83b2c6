package chat

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	argsLimit       = 120
	resultLineLimit = 4
	resultWidth     = 160
)

// formatArgs renders tool arguments as sorted key=value pairs.
func formatArgs(args map[string]any) string {
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
		parts = append(parts, key+"="+formatValue(args[key]))
	}
	return truncate(strings.Join(parts, " "), argsLimit)
}

func formatValue(value any) string {
	switch typed := value.(type) {
	case string:
		return fmt.Sprintf("%q", typed)
	case float64:
		return fmt.Sprintf("%g", typed)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}

// formatResult keeps the first few lines of a tool result.
func formatResult(result string) string {
	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	extra := 0
	if len(lines) > resultLineLimit {
		extra = len(lines) - resultLineLimit
		lines = lines[:resultLineLimit]
	}
	for i, line := range lines {
		lines[i] = truncate(line, resultWidth)
	}
	out := strings.Join(lines, "\n")
	if extra > 0 {
		out += fmt.Sprintf("\n… %d more lines", extra)
	}
	return out
}

// truncate shortens text to limit runes.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}

// indent prefixes every line of text.
func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}
