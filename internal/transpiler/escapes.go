package transpiler

import "strings"

// specialReplacements run in order; the sequence is load-bearing. Em-dash
// before en-dash, the tilde before \textasciitilde (whose output tilde must
// stay literal), and \textbackslash last so the backslash it produces can
// never be re-read as markup.
var specialReplacements = []struct {
	from string
	to   string
}{
	{"---", "—"},
	{"--", "–"},
	{"``", "“"},
	{"''", "”"},
	{`\\`, "<br />"},
	{`\%`, "%"},
	{`\#`, "#"},
	{`\$`, "$"},
	{`\_`, "_"},
	{`\&`, "&amp;"},
	{"~", "&#160;"},
	{`\textasciitilde`, "~"},
	{`\textasciicircum`, "^"},
	{`\textbackslash`, `\`},
}

// replaceSpecialChars maps escaped special characters, dash and quote
// ligatures, the line-break marker, and the non-breaking-space marker to
// their target-dialect equivalents.
func replaceSpecialChars(content string) string {
	result := content
	for _, r := range specialReplacements {
		result = strings.ReplaceAll(result, r.from, r.to)
	}
	return result
}
