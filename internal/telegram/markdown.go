package telegram

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedCode   = regexp.MustCompile("(?s)```(.*?)```")
	inlineCode   = regexp.MustCompile("`([^`\n]*?)`")
	boldStars    = regexp.MustCompile(`\*\*([^\n]+?)\*\*`)
	boldUnder    = regexp.MustCompile(`__([^\n]+?)__`)
	italicStar   = regexp.MustCompile(`\*([^*\n]+?)\*`)
	italicUnder  = regexp.MustCompile(`(^|[^\w])_([^_\n]+?)_([^\w]|$)`)
	placeholderR = regexp.MustCompile("\x00(\\d+)\x00")
)

// EscapeHTML escapes the characters Telegram's HTML parser treats specially.
func EscapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	return strings.ReplaceAll(text, ">", "&gt;")
}

// MarkdownToHTML renders the small Markdown subset models produce into
// Telegram HTML: fenced and inline code, bold and italic. Code contents are
// never reformatted.
func MarkdownToHTML(md string) string {
	if md == "" {
		return ""
	}
	html := EscapeHTML(md)

	var protected []string
	protect := func(rendered string) string {
		protected = append(protected, rendered)
		return fmt.Sprintf("\x00%d\x00", len(protected)-1)
	}
	html = fencedCode.ReplaceAllStringFunc(html, func(match string) string {
		return protect("<pre>" + fencedCode.FindStringSubmatch(match)[1] + "</pre>")
	})
	html = inlineCode.ReplaceAllStringFunc(html, func(match string) string {
		return protect("<code>" + inlineCode.FindStringSubmatch(match)[1] + "</code>")
	})

	html = boldStars.ReplaceAllString(html, "<b>$1</b>")
	html = boldUnder.ReplaceAllString(html, "<b>$1</b>")
	html = italicStar.ReplaceAllString(html, "<i>$1</i>")
	html = italicUnder.ReplaceAllString(html, "$1<i>$2</i>$3")

	return placeholderR.ReplaceAllStringFunc(html, func(match string) string {
		var index int
		fmt.Sscanf(placeholderR.FindStringSubmatch(match)[1], "%d", &index)
		if index < 0 || index >= len(protected) {
			return match
		}
		return protected[index]
	})
}
