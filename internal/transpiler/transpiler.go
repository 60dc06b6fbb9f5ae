// Package transpiler converts sanitized authoring-dialect (LaTeX) fragments
// into the XHTML dialect consumed by the e-book packager. The conversion is
// an ordered sequence of passes over the buffer; later passes assume the
// structural markers handled by earlier ones are already gone, so the order
// is load-bearing.
package transpiler

import (
	"fmt"
	"regexp"
	"strings"

	"ebook-markup/internal/logger"
)

// Transpiler converts one fragment per Transpile call. It holds no mutable
// state between calls and is safe for concurrent use.
type Transpiler struct{}

// New creates a Transpiler.
func New() *Transpiler {
	return &Transpiler{}
}

// Transpile converts a sanitized fragment into an XHTML fragment. The title
// is rendered as the chapter heading; lang selects the localized heading of
// the trailing notes section and does not alter the transformation itself.
// Every element the transpiler opens is closed; imbalance already present in
// the input is the sanitizer's concern, not repaired here.
func (t *Transpiler) Transpile(content, title, lang string) string {
	result := stripScaffolding(content)

	result = mapHeadings(result)
	result = mapInline(result)

	var notes footnoteTable
	result = extractFootnotes(result, &notes)

	result = mapCallouts(result)
	result = mapLists(result)
	result = mapQuotes(result)
	result = convertTables(result)
	result = replaceSpecialChars(result)
	result = stripCommands(result)
	result = closeListItems(result)
	result = wrapBareLines(result)

	if notes.Len() > 0 {
		result = strings.TrimRight(result, "\n") + "\n" + notes.render(lang)
	}

	if title != "" {
		result = `<h1 class="chapter-title">` + title + "</h1>\n" + result
	}

	logger.Debug("transpiled fragment",
		logger.Int("inLen", len(content)),
		logger.Int("outLen", len(result)),
		logger.Int("footnotes", notes.Len()))

	return result
}

// Transpile runs a default Transpiler over content.
func Transpile(content, title, lang string) string {
	return New().Transpile(content, title, lang)
}

var (
	beginDocumentPattern = regexp.MustCompile(`(?s)^.*?\\begin\{document\}`)
	endDocumentPattern   = regexp.MustCompile(`(?s)\\end\{document\}.*$`)
	preambleLinePattern  = regexp.MustCompile(`(?m)^\\(documentclass|usepackage).*$`)
)

// stripScaffolding defensively removes wrapping-document structure. The
// sanitizer already does this; running it twice is a no-op.
func stripScaffolding(content string) string {
	result := beginDocumentPattern.ReplaceAllString(content, "")
	result = endDocumentPattern.ReplaceAllString(result, "")
	result = preambleLinePattern.ReplaceAllString(result, "")
	return result
}

// headingLevels maps authoring commands to target elements, outermost first.
// Each level carries a semantic class so stylesheets can address it.
var headingLevels = []struct {
	command string
	tag     string
	class   string
}{
	{"chapter", "h1", "chapter"},
	{"section", "h2", "section"},
	{"subsection", "h3", "subsection"},
	{"subsubsection", "h4", "subsubsection"},
}

func mapHeadings(content string) string {
	result := content
	for _, h := range headingLevels {
		// The argument admits one nested brace group, so a heading carrying
		// an inline marker like \textbf{...} still converts; the marker
		// itself is mapped afterwards by mapInline.
		pattern := regexp.MustCompile(`\\` + h.command + `\*?\{((?:[^{}]|\{[^{}]*\})*)\}`)
		result = pattern.ReplaceAllString(result,
			fmt.Sprintf(`<%s class="%s">$1</%s>`, h.tag, h.class, h.tag))
	}
	return result
}

// Composed emphasis is handled before the single markers: substituting
// \textbf and \textit one after the other on \textbf{\textit{x}} would leave
// the inner marker unconverted inside an already-emitted element.
var (
	boldItalicPattern = regexp.MustCompile(`\\textbf\{\\textit\{([^{}]*)\}\}`)
	italicBoldPattern = regexp.MustCompile(`\\textit\{\\textbf\{([^{}]*)\}\}`)

	inlineMarkers = []struct {
		pattern *regexp.Regexp
		repl    string
	}{
		{regexp.MustCompile(`\\textbf\{([^{}]*)\}`), `<strong>$1</strong>`},
		{regexp.MustCompile(`\\textit\{([^{}]*)\}`), `<em>$1</em>`},
		{regexp.MustCompile(`\\emph\{([^{}]*)\}`), `<em>$1</em>`},
		{regexp.MustCompile(`\\underline\{([^{}]*)\}`), `<span class="underline">$1</span>`},
		{regexp.MustCompile(`\\texttt\{([^{}]*)\}`), `<code>$1</code>`},
	}
)

func mapInline(content string) string {
	result := boldItalicPattern.ReplaceAllString(content, `<strong><em>$1</em></strong>`)
	result = italicBoldPattern.ReplaceAllString(result, `<em><strong>$1</strong></em>`)

	// Innermost-first: each pattern only matches brace-free argument text,
	// so repeating until stable unwinds arbitrary nesting.
	for {
		prev := result
		for _, m := range inlineMarkers {
			result = m.pattern.ReplaceAllString(result, m.repl)
		}
		if result == prev {
			break
		}
	}
	return result
}

// calloutKinds maps callout environment names to their target-dialect kind
// class.
var calloutKinds = []struct {
	env  string
	kind string
}{
	{"tipbox", "tip"},
	{"keybox", "key-insight"},
	{"warningbox", "warning"},
	{"examplebox", "example"},
}

// mapCallouts converts the four callout environments to aside elements
// tagged by kind. Both authoring forms are handled: \begin{tipbox}[Title]
// renders the title as a bolded lead, \begin{tipbox} has none.
func mapCallouts(content string) string {
	result := content
	for _, c := range calloutKinds {
		withTitle := regexp.MustCompile(`\\begin\{` + c.env + `\}\[([^\]]*)\]`)
		result = withTitle.ReplaceAllString(result,
			`<aside class="callout callout-`+c.kind+`">`+"\n"+
				`<p class="callout-title"><strong>$1</strong></p>`)

		result = strings.ReplaceAll(result, `\begin{`+c.env+`}`,
			`<aside class="callout callout-`+c.kind+`">`)
		result = strings.ReplaceAll(result, `\end{`+c.env+`}`, `</aside>`)
	}
	return result
}

func mapQuotes(content string) string {
	result := strings.ReplaceAll(content, `\begin{quote}`, "<blockquote>")
	result = strings.ReplaceAll(result, `\end{quote}`, "</blockquote>")
	return result
}

var (
	commandWithArgPattern = regexp.MustCompile(`\\[a-zA-Z]+\*?(?:\[[^\]]*\])?\{([^{}]*)\}`)
	bareCommandPattern    = regexp.MustCompile(`\\[a-zA-Z]+\*?(?:\[[^\]]*\])?`)
	envTagPattern         = regexp.MustCompile(`\\(?:begin|end)\{[^}]*\}`)
)

// stripCommands removes authoring-dialect syntax that survived the mapping
// passes. Argument text is preserved as plain content so a mapping gap
// degrades visibly instead of deleting prose; bare zero-argument commands
// and leftover environment tags carry no content and are dropped outright.
func stripCommands(content string) string {
	result := envTagPattern.ReplaceAllString(content, "")

	for {
		replaced := commandWithArgPattern.ReplaceAllString(result, "$1")
		if replaced == result {
			break
		}
		result = replaced
	}

	return bareCommandPattern.ReplaceAllString(result, "")
}

// blockTagPrefixes are the target-dialect elements whose lines pass through
// the paragraph-wrapping step unwrapped.
var blockTagPrefixes = []string{
	"<h1", "<h2", "<h3", "<h4",
	"</h1", "</h2", "</h3", "</h4",
	"<ul", "</ul", "<ol", "</ol", "<dl", "</dl",
	"<li", "</li", "<dt", "</dt", "<dd", "</dd",
	"<table", "</table", "<thead", "</thead", "<tbody", "</tbody",
	"<tr", "</tr", "<caption", "</caption",
	"<aside", "</aside", "<blockquote", "</blockquote",
	"<section", "</section", "<figure", "</figure",
	"<p", "</p", "<hr",
}

func startsWithBlockTag(line string) bool {
	for _, prefix := range blockTagPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// wrapBareLines wraps text lines that are not already part of a block
// element in paragraph elements.
func wrapBareLines(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || startsWithBlockTag(trimmed) {
			out = append(out, line)
			continue
		}
		out = append(out, "<p>"+trimmed+"</p>")
	}
	return strings.Join(out, "\n")
}
