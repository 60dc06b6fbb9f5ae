package transpiler

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// footnoteTable collects footnote bodies in encounter order, 1-based. Built
// once per Transpile run and discarded with it.
type footnoteTable struct {
	bodies []string
}

func (ft *footnoteTable) add(body string) int {
	ft.bodies = append(ft.bodies, body)
	return len(ft.bodies)
}

// Len returns the number of collected footnotes.
func (ft *footnoteTable) Len() int { return len(ft.bodies) }

// extractFootnotes replaces every \footnote{...} with a numbered,
// cross-linked reference marker and records the body in notes. The body may
// contain nested braces, so matching is done with a brace counter rather
// than a pattern.
func extractFootnotes(content string, notes *footnoteTable) string {
	const marker = `\footnote{`

	var sb strings.Builder
	sb.Grow(len(content))
	rest := content
	for {
		idx := strings.Index(rest, marker)
		if idx < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:idx])

		bodyStart := idx + len(marker)
		depth := 1
		i := bodyStart
		for ; i < len(rest); i++ {
			switch rest[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if depth != 0 {
			// Unterminated footnote at end of buffer: keep the text, drop
			// the marker.
			sb.WriteString(rest[bodyStart:])
			break
		}

		n := notes.add(strings.TrimSpace(rest[bodyStart:i]))
		sb.WriteString(fmt.Sprintf(
			`<a class="footnote-ref" id="fnref-%d" href="#fn-%d"><sup>%d</sup></a>`, n, n, n))
		rest = rest[i+1:]
	}
	return sb.String()
}

// notesHeadings holds the localized heading of the trailing notes section.
// The order must match notesMatcher's tag list.
var notesHeadings = []string{
	"Notes",       // en
	"Przypisy",    // pl
	"Anmerkungen", // de
	"Notes",       // fr
	"Notas",       // es
	"Note",        // it
}

var notesMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Polish,
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
})

// notesHeading picks the localized heading for the given BCP 47 tag. An
// unparseable or unsupported tag falls back to English.
func notesHeading(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return notesHeadings[0]
	}
	_, index, _ := notesMatcher.Match(tag)
	return notesHeadings[index]
}

// render produces the trailing notes section: a numbered list where entry i
// carries the body of reference i and a back-reference to it.
func (ft *footnoteTable) render(lang string) string {
	if len(ft.bodies) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(`<section class="footnotes">` + "\n")
	sb.WriteString(`<h2 class="footnotes-heading">` + notesHeading(lang) + "</h2>\n")
	sb.WriteString("<ol>\n")
	for i, body := range ft.bodies {
		n := i + 1
		// Bodies were pulled out of the buffer before the escape and
		// command passes ran, so those passes apply here.
		body = stripCommands(replaceSpecialChars(body))
		sb.WriteString(fmt.Sprintf(
			`<li id="fn-%d"><p>%s <a class="footnote-backref" href="#fnref-%d">&#8617;</a></p></li>`+"\n",
			n, body, n))
	}
	sb.WriteString("</ol>\n")
	sb.WriteString("</section>\n")
	return sb.String()
}
