package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Args holds decoded JSON arguments for a tool call.
type Args map[string]json.RawMessage

// ParseArgs decodes raw tool-call arguments. Empty or malformed input yields
// an empty map so the tool itself reports what is missing.
func ParseArgs(raw string) (Args, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Args{}, true
	}
	var args Args
	if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
		return Args{}, false
	}
	return args, true
}

// Values decodes every argument into plain Go values for display.
func (args Args) Values() map[string]any {
	out := make(map[string]any, len(args))
	for key, raw := range args {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			value = string(raw)
		}
		out[key] = value
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// RequiredString returns a required string argument.
func (args Args) RequiredString(key string) (string, error) {
	value, ok, err := args.OptionalString(key)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

// OptionalString returns an optional string argument with a presence flag.
// Text is returned untrimmed so typed input keeps its spacing.
func (args Args) OptionalString(key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok || isNull(raw) {
		return "", false, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false, fmt.Errorf("%s must be a string", key)
	}
	return value, true, nil
}

// OptionalNumber returns an optional numeric argument. Numeric strings are
// accepted since some models quote numbers.
func (args Args) OptionalNumber(key string) (float64, bool, error) {
	raw, ok := args[key]
	if !ok || isNull(raw) {
		return 0, false, nil
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err == nil {
		return value, true, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		parsed, perr := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if perr == nil {
			return parsed, true, nil
		}
	}
	return 0, false, fmt.Errorf("%s must be a number", key)
}

// RequiredInt returns a required numeric argument rounded to an int.
func (args Args) RequiredInt(key string) (int, error) {
	value, ok, err := args.OptionalInt(key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	return value, nil
}

// OptionalInt returns an optional numeric argument rounded to an int.
func (args Args) OptionalInt(key string) (int, bool, error) {
	value, ok, err := args.OptionalNumber(key)
	if err != nil || !ok {
		return 0, ok, err
	}
	return int(math.Round(value)), true, nil
}

// OptionalBool returns an optional boolean argument.
func (args Args) OptionalBool(key string) (bool, bool, error) {
	raw, ok := args[key]
	if !ok || isNull(raw) {
		return false, false, nil
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return false, false, fmt.Errorf("%s must be a boolean", key)
	}
	return value, true, nil
}
