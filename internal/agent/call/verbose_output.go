package call

import (
	"fmt"
	"io"
	"strings"

	"phoneclaw/internal/agent"
)

type verboseSink struct {
	writer             io.Writer
	noColor            bool
	maxBytes           int
	toolOutputMaxLines int
}

// collectVerboseSinks returns the console sink (when verbose) and the
// uncapped log sink (when configured).
func collectVerboseSinks(opts RunOptions) []verboseSink {
	sinks := make([]verboseSink, 0, 2)
	if opts.Verbose && opts.VerboseWriter != nil {
		sinks = append(sinks, verboseSink{
			writer:             opts.VerboseWriter,
			noColor:            opts.NoColor,
			maxBytes:           verboseMaxBytes,
			toolOutputMaxLines: verboseToolOutputMaxLines,
		})
	}
	if opts.VerboseLogWriter != nil {
		sinks = append(sinks, verboseSink{writer: opts.VerboseLogWriter, noColor: true})
	}
	return sinks
}

func logVerbose(opts RunOptions, style verboseStyle, message string) {
	for _, sink := range collectVerboseSinks(opts) {
		palette := paletteFor(sink.writer, sink.noColor)
		writeVerboseLine(sink.writer, palette, style, message)
	}
}

func logVerboseBlock(opts RunOptions, header, body string, headerStyle, bodyStyle verboseStyle) {
	for _, sink := range collectVerboseSinks(opts) {
		palette := paletteFor(sink.writer, sink.noColor)
		writeVerboseLine(sink.writer, palette, headerStyle, header)
		trimmed := truncateVerboseWithLimit(body, sink.maxBytes, verboseTruncationMarker)
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		for _, line := range strings.Split(trimmed, "\n") {
			writeVerboseLine(sink.writer, palette, bodyStyle, line)
		}
	}
}

func logVerboseToolOutput(opts RunOptions, header, body string) {
	for _, sink := range collectVerboseSinks(opts) {
		palette := paletteFor(sink.writer, sink.noColor)
		writeVerboseLine(sink.writer, palette, styleHeadingToolResult, header)
		trimmed := truncateVerboseWithLimit(limitOutputLines(body, sink.toolOutputMaxLines), sink.maxBytes, verboseInlineTruncationMarker)
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		for _, line := range strings.Split(trimmed, "\n") {
			writeVerboseLine(sink.writer, palette, styleDefault, line)
		}
	}
}

func logVerbosePrompt(opts RunOptions, prompt agent.Prompt, step int) {
	sinks := collectVerboseSinks(opts)
	if len(sinks) == 0 {
		return
	}
	header := fmt.Sprintf("LLM prompt (step %d)", step)
	for _, sink := range sinks {
		palette := paletteFor(sink.writer, sink.noColor)
		writeVerboseLine(sink.writer, palette, styleHeadingPrompt, header)
		trimmed := truncateVerboseWithLimit(formatPrompt(prompt, sink.toolOutputMaxLines), sink.maxBytes, verboseTruncationMarker)
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		for _, line := range strings.Split(trimmed, "\n") {
			writeVerboseLine(sink.writer, palette, styleDim, line)
		}
	}
}

func writeVerboseLine(w io.Writer, palette verbosePalette, style verboseStyle, line string) {
	prefix := verbosePrefix
	if palette.enabled {
		prefix = palette.apply(styleDim, prefix)
	}
	fmt.Fprintf(w, "%s %s\n", prefix, palette.apply(style, line))
}

func truncateVerboseInline(value string) string {
	return truncateVerboseWithLimit(value, verboseMaxBytes, verboseInlineTruncationMarker)
}

func truncateVerboseWithLimit(value string, maxBytes int, marker string) string {
	if maxBytes <= 0 || len(value) <= maxBytes {
		return value
	}
	if maxBytes <= len(marker) {
		return marker[:maxBytes]
	}
	return value[:maxBytes-len(marker)] + marker
}

// limitOutputLines trims multi-line strings to a maximum number of lines.
func limitOutputLines(value string, maxLines int) string {
	if maxLines <= 0 {
		return value
	}
	trimmed := strings.TrimRight(value, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	lines = lines[:maxLines]
	last := maxLines - 1
	if strings.TrimSpace(lines[last]) == "" {
		lines[last] = verboseInlineTruncationMarker
	} else {
		lines[last] = lines[last] + " " + verboseInlineTruncationMarker
	}
	return strings.Join(lines, "\n")
}
