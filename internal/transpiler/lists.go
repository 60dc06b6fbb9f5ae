package transpiler

import (
	"regexp"
	"strings"
)

var descItemPattern = regexp.MustCompile(`\\item\[([^\]]*)\]\s*`)

// mapLists converts bullet, numbered and definition lists to target list
// elements. Authoring-dialect items have no closing marker, so <li> and <dd>
// are left open here; closeListItems closes them once the whole buffer is
// linear.
func mapLists(content string) string {
	replacer := strings.NewReplacer(
		`\begin{itemize}`, "<ul>",
		`\end{itemize}`, "</ul>",
		`\begin{enumerate}`, "<ol>",
		`\end{enumerate}`, "</ol>",
		`\begin{description}`, "<dl>",
		`\end{description}`, "</dl>",
	)
	result := replacer.Replace(content)

	// Definition items carry their term in brackets; the bracket form must
	// be handled before the bare \item so the term is not lost.
	result = descItemPattern.ReplaceAllString(result, "<dt>$1</dt>\n<dd>")
	result = regexp.MustCompile(`\\item\s*`).ReplaceAllString(result, "<li>")

	return result
}

// listMarker tokens recognized by closeListItems, longest match first where
// prefixes overlap.
var listMarkers = []string{
	"</li>", "<li>", "</dd>", "<dd>", "<dt>",
	"<ul>", "</ul>", "<ol>", "</ol>", "<dl>", "</dl>",
}

// closeListItems inserts the closing marker for any list item still open,
// immediately before the next sibling item or the enclosing list's close.
// Nested lists keep their parent item open; a per-level stack tracks which
// levels have an open item.
func closeListItems(content string) string {
	type level struct {
		openItem string // "" when no item is open at this level
	}
	var stack []level
	var sb strings.Builder
	sb.Grow(len(content) + 64)

	closeCurrent := func() {
		if n := len(stack); n > 0 && stack[n-1].openItem != "" {
			sb.WriteString(stack[n-1].openItem)
			sb.WriteString("\n")
			stack[n-1].openItem = ""
		}
	}

	i := 0
	for i < len(content) {
		marker := matchListMarker(content[i:])
		if marker == "" {
			sb.WriteByte(content[i])
			i++
			continue
		}

		switch marker {
		case "<ul>", "<ol>", "<dl>":
			stack = append(stack, level{})
			sb.WriteString(marker)
		case "</ul>", "</ol>", "</dl>":
			closeCurrent()
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			sb.WriteString(marker)
		case "<li>":
			closeCurrent()
			// An item outside any list still needs its close; track it on
			// an implicit level so the end-of-buffer drain reaches it.
			if len(stack) == 0 {
				stack = append(stack, level{})
			}
			stack[len(stack)-1].openItem = "</li>"
			sb.WriteString(marker)
		case "<dd>":
			closeCurrent()
			if len(stack) == 0 {
				stack = append(stack, level{})
			}
			stack[len(stack)-1].openItem = "</dd>"
			sb.WriteString(marker)
		case "<dt>":
			closeCurrent()
			sb.WriteString(marker)
		case "</li>", "</dd>":
			if n := len(stack); n > 0 && stack[n-1].openItem == marker {
				stack[n-1].openItem = ""
			}
			sb.WriteString(marker)
		}
		i += len(marker)
	}

	// Items left open by a list that never closed; the sanitizer prevents
	// this for known environments, but stay total regardless.
	for len(stack) > 0 {
		closeCurrent()
		stack = stack[:len(stack)-1]
	}

	return sb.String()
}

func matchListMarker(s string) string {
	for _, m := range listMarkers {
		if strings.HasPrefix(s, m) {
			return m
		}
	}
	return ""
}
