package telegram

import "testing"

func TestMarkdownToHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "escapes", in: "a < b && c > d", want: "a &lt; b &amp;&amp; c &gt; d"},
		{name: "bold", in: "**done** and __done__", want: "<b>done</b> and <b>done</b>"},
		{name: "italic", in: "*maybe* or _maybe_", want: "<i>maybe</i> or <i>maybe</i>"},
		{name: "inline code untouched", in: "call `get_ui_tree()` *now*", want: "call <code>get_ui_tree()</code> <i>now</i>"},
		{name: "fenced", in: "```\n**x** <y>\n```", want: "<pre>\n**x** &lt;y&gt;\n</pre>"},
		{name: "snake case", in: "use get_recent_notifications today", want: "use get_recent_notifications today"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MarkdownToHTML(tc.in); got != tc.want {
				t.Fatalf("MarkdownToHTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
