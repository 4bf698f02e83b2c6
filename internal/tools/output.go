package tools

import (
	"encoding/json"
	"fmt"
	"time"
)

// finalize assembles a CallResult with timing and truncation metadata.
// Image payloads are exempt from the output cap since the loop consumes them.
func (r *Registry) finalize(tool string, start, end time.Time, output string, image bool, err error) CallResult {
	if err != nil {
		output = "Error: " + err.Error()
	}
	truncated := false
	if !image {
		output, truncated = applyOutputLimit(output, r.Limits.MaxOutputBytes)
	}
	return CallResult{
		Tool:        tool,
		Output:      output,
		OutputBytes: len(output),
		Truncated:   truncated,
		IsImage:     image && err == nil,
		StartedAt:   start,
		FinishedAt:  end,
		Duration:    end.Sub(start),
		Error:       errorString(err),
	}
}

// renderResult converts an executor value into model-facing text.
func renderResult(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}

// applyOutputLimit truncates output to a maximum size.
func applyOutputLimit(output string, max int) (string, bool) {
	if max <= 0 || len(output) <= max {
		return output, false
	}
	return truncateOutput(output, max)
}

// truncateOutput trims output and appends a truncation marker.
func truncateOutput(output string, max int) (string, bool) {
	if max <= 0 || len(output) <= max {
		return output, false
	}
	if max <= len(truncationMarker) {
		return truncationMarker[:max], true
	}
	return output[:max-len(truncationMarker)] + truncationMarker, true
}

// errorString formats errors for CallResult output.
func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
