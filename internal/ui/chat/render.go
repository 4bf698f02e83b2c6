package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorHeader    = lipgloss.Color("33")
	colorUser      = lipgloss.Color("39")
	colorAssistant = lipgloss.Color("252")
	colorTool      = lipgloss.Color("178")
	colorMuted     = lipgloss.Color("244")
	colorError     = lipgloss.Color("196")
	colorNotice    = lipgloss.Color("42")
)

// renderHeader renders the title and run status line.
func renderHeader(title string, state State, now time.Time, noColor bool) string {
	line := title
	if state.Running {
		line += " | step " + fmtInt(state.Step)
		if !state.StartedAt.IsZero() {
			line += " | " + formatDuration(now.Sub(state.StartedAt))
		}
	} else if state.LastStatus != "" {
		line += " | last run: " + string(state.LastStatus)
	}
	return stylize(line, noColor, colorHeader)
}

// renderTranscript renders every entry.
func renderTranscript(state State, width int, noColor bool) string {
	blocks := make([]string, 0, len(state.Entries))
	for _, entry := range state.Entries {
		blocks = append(blocks, renderEntry(entry, noColor))
	}
	content := strings.Join(blocks, "\n")
	if width > 0 && !noColor {
		content = lipgloss.NewStyle().Width(width).Render(content)
	}
	return content
}

func renderEntry(entry Entry, noColor bool) string {
	switch entry.Kind {
	case EntryUser:
		return stylize("> "+entry.Text, noColor, colorUser)
	case EntryTool:
		line := "🛠 " + entry.Tool
		if entry.Args != "" {
			line += " " + entry.Args
		}
		if !entry.Done {
			return stylize(line+" …", noColor, colorTool)
		}
		line += " (" + formatDuration(entry.FinishedAt.Sub(entry.StartedAt)) + ")"
		out := stylize(line, noColor, colorTool)
		if entry.Result != "" {
			out += "\n" + stylize(indent(formatResult(entry.Result), "  "), noColor, colorMuted)
		}
		return out
	case EntryError:
		return stylize(entry.Text, noColor, colorError)
	case EntryNotice:
		return stylize(entry.Text, noColor, colorNotice)
	default:
		return stylize(entry.Text, noColor, colorAssistant)
	}
}

// renderFooter renders the activity line under the transcript.
func renderFooter(state State, spinnerView string, interactive bool, noColor bool) string {
	if state.Running {
		return spinnerView + stylize(" Thinking... (esc to stop)", noColor, colorMuted)
	}
	if interactive {
		return stylize("enter to send · esc to stop · ctrl+c to quit", noColor, colorMuted)
	}
	return ""
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
