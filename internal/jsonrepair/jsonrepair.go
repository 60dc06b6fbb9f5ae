// Package jsonrepair recovers truncated JSON emitted on the engine's
// structured-output channel. Generated chapter plans are regularly cut off
// mid-value; Repair rewinds to the last complete element and closes every
// open container so the result always parses.
package jsonrepair

import (
	"encoding/json"
	"strings"

	"ebook-markup/internal/logger"
)

// Repair returns a buffer that parses as JSON. Markdown code fences and any
// non-JSON prefix or suffix are stripped first. When the buffer ends inside
// an unterminated string or after a dangling key, the incomplete element is
// dropped rather than guessed at; content loss is confined to that element.
// If the buffer contains no object or array start at all there is nothing to
// repair and the input is returned unchanged.
func Repair(content string) string {
	stripped := stripCodeFences(strings.TrimSpace(content))

	start := strings.IndexAny(stripped, "{[")
	if start < 0 {
		return content
	}
	s := stripped[start:]

	if json.Valid([]byte(s)) {
		return s
	}

	// Work backwards from the full buffer until a closeable prefix parses.
	// The first success preserves the most content, so loss stays confined
	// to the trailing incomplete element.
	for cut := len(s); cut > 0; cut-- {
		if repaired, ok := tryClose(s[:cut]); ok {
			if cut < len(s) {
				logger.Debug("dropped truncated json tail",
					logger.Int("cutBytes", len(s)-cut))
			}
			return repaired
		}
	}

	// A buffer starting with { or [ always closes at cut 1; not reached.
	return "{}"
}

// stripCodeFences removes a surrounding markdown code fence (``` or
// ```json) if present.
func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	} else {
		return ""
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// scanState captures container nesting at the end of a prefix.
type scanState struct {
	stack       []byte // '{' and '[' in open order
	inString    bool
	stringStart int // opening quote offset, valid when inString
}

func scan(s string) scanState {
	var st scanState
	for i := 0; i < len(s); i++ {
		c := s[i]
		if st.inString {
			switch c {
			case '\\':
				i++
			case '"':
				st.inString = false
			}
			continue
		}
		switch c {
		case '"':
			st.inString = true
			st.stringStart = i
		case '{', '[':
			st.stack = append(st.stack, c)
		case '}':
			if n := len(st.stack); n > 0 && st.stack[n-1] == '{' {
				st.stack = st.stack[:n-1]
			}
		case ']':
			if n := len(st.stack); n > 0 && st.stack[n-1] == '[' {
				st.stack = st.stack[:n-1]
			}
		}
	}
	return st
}

// tryClose truncates an incomplete trailing string or dangling key from
// prefix, closes all open containers in reverse-open order, and reports
// whether the result parses.
func tryClose(prefix string) (string, bool) {
	st := scan(prefix)
	p := prefix
	if st.inString {
		p = p[:st.stringStart]
	}
	p = strings.TrimRight(p, " \t\r\n")

	p = strings.TrimSuffix(p, ",")
	p = strings.TrimRight(p, " \t\r\n")

	// A trailing colon means the value never arrived; the key goes with it.
	if strings.HasSuffix(p, ":") {
		p = strings.TrimRight(p[:len(p)-1], " \t\r\n")
		p = trimTrailingString(p)
		p = strings.TrimRight(p, " \t\r\n")
		p = strings.TrimSuffix(p, ",")
		p = strings.TrimRight(p, " \t\r\n")
	}

	if p == "" {
		return "", false
	}

	st = scan(p)
	if st.inString {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString(p)
	for i := len(st.stack) - 1; i >= 0; i-- {
		if st.stack[i] == '{' {
			sb.WriteByte('}')
		} else {
			sb.WriteByte(']')
		}
	}
	out := sb.String()
	if !json.Valid([]byte(out)) {
		return "", false
	}
	return out, true
}

// trimTrailingString removes a complete double-quoted string from the end of
// s, respecting escaped quotes.
func trimTrailingString(s string) string {
	if !strings.HasSuffix(s, `"`) {
		return s
	}
	// Walk forward to find string boundaries; the last string is the one to
	// drop. Backward scanning cannot distinguish escaped quotes reliably.
	lastStart := -1
	inString := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
				if i == len(s)-1 {
					lastStart = start
				}
			}
			continue
		}
		if c == '"' {
			inString = true
			start = i
		}
	}
	if lastStart < 0 {
		return s
	}
	return s[:lastStart]
}
