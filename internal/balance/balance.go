// Package balance repairs unbalanced region markers in generated markup.
// It works over \begin{name}/\end{name} pairs drawn from a closed vocabulary
// plus unescaped brace groups, and performs only additive or subtractive
// edits: inserted or removed marker tokens, never reordered content.
package balance

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"ebook-markup/internal/logger"
)

// Vocabulary is the closed set of region names a repair run understands,
// together with the known containment relationships between them.
// Names outside the vocabulary pass through untouched.
type Vocabulary struct {
	names   map[string]bool
	nestsIn map[string]string // inner -> outer
}

// NewVocabulary creates a vocabulary from the given region names.
func NewVocabulary(names ...string) *Vocabulary {
	v := &Vocabulary{
		names:   make(map[string]bool, len(names)),
		nestsIn: make(map[string]string),
	}
	for _, n := range names {
		v.names[n] = true
	}
	return v
}

// AddContainment registers that inner conventionally nests inside outer.
// Both names are added to the vocabulary if not already present.
func (v *Vocabulary) AddContainment(inner, outer string) {
	v.names[inner] = true
	v.names[outer] = true
	v.nestsIn[inner] = outer
}

// Knows reports whether name belongs to the vocabulary.
func (v *Vocabulary) Knows(name string) bool { return v.names[name] }

// NestsIn reports whether inner is registered as nesting inside outer.
func (v *Vocabulary) NestsIn(inner, outer string) bool { return v.nestsIn[inner] == outer }

// inContainment reports whether name participates in any containment
// relationship, as inner or outer.
func (v *Vocabulary) inContainment(name string) bool {
	if _, ok := v.nestsIn[name]; ok {
		return true
	}
	for _, outer := range v.nestsIn {
		if outer == name {
			return true
		}
	}
	return false
}

// Names returns the vocabulary names in sorted order.
func (v *Vocabulary) Names() []string {
	out := make([]string, 0, len(v.names))
	for n := range v.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// regionEvent is one \begin or \end occurrence in the buffer.
type regionEvent struct {
	name    string
	isBegin bool
	start   int // offset of the backslash
	end     int // offset just past the closing }
}

var regionTagPattern = regexp.MustCompile(`\\(begin|end)\{([a-zA-Z][a-zA-Z0-9]*\*?)\}`)

// scanRegions extracts begin/end events for known names, in buffer order.
func scanRegions(content string, vocab *Vocabulary) []regionEvent {
	matches := regionTagPattern.FindAllStringSubmatchIndex(content, -1)
	events := make([]regionEvent, 0, len(matches))
	for _, m := range matches {
		kind := content[m[2]:m[3]]
		name := content[m[4]:m[5]]
		if !vocab.Knows(name) {
			continue
		}
		events = append(events, regionEvent{
			name:    name,
			isBegin: kind == "begin",
			start:   m[0],
			end:     m[1],
		})
	}
	return events
}

// Repair returns content with every vocabulary region balanced and correctly
// nested, and every unescaped brace group closed. It never fails and is
// idempotent; an unescaped closing brace with no matching opener is left
// as-is rather than guessed at.
func Repair(content string, vocab *Vocabulary) string {
	result := balanceRegionCounts(content, vocab)
	result = swapAdjacentClosers(result, vocab)
	result = repairNestingOrder(result, vocab)
	result = closeOpenBraces(result)

	if result != content {
		logger.Debug("balance repair made changes",
			logger.Int("inLen", len(content)),
			logger.Int("outLen", len(result)))
	}
	return result
}

// balanceRegionCounts equalizes open and close counts per region name.
// Missing closers are appended at the tail, ordered by where each name's
// first unclosed open occurs; excess closers are removed starting from the
// first occurrence in the buffer.
func balanceRegionCounts(content string, vocab *Vocabulary) string {
	events := scanRegions(content, vocab)
	if len(events) == 0 {
		return content
	}

	type tally struct {
		begins []int // start offsets of begin events
		ends   []int // start offsets of end events
	}
	counts := make(map[string]*tally)
	for _, ev := range events {
		t := counts[ev.name]
		if t == nil {
			t = &tally{}
			counts[ev.name] = t
		}
		if ev.isBegin {
			t.begins = append(t.begins, ev.start)
		} else {
			t.ends = append(t.ends, ev.start)
		}
	}

	// Remove excess closers, earliest occurrences first. A stray closer is
	// more likely an echoed token near the start than a structural error
	// later on.
	var removeSpans [][2]int
	for name, t := range counts {
		excess := len(t.ends) - len(t.begins)
		if excess <= 0 {
			continue
		}
		closer := `\end{` + name + `}`
		for i := 0; i < excess; i++ {
			start := t.ends[i]
			removeSpans = append(removeSpans, [2]int{start, start + len(closer)})
		}
		logger.Debug("removing excess closers",
			logger.String("region", name), logger.Int("count", excess))
	}
	result := content
	if len(removeSpans) > 0 {
		sort.Slice(removeSpans, func(i, j int) bool { return removeSpans[i][0] > removeSpans[j][0] })
		for _, span := range removeSpans {
			result = result[:span[0]] + result[span[1]:]
		}
	}

	// Append missing closers at the tail, in the order the unclosed opens
	// were first seen.
	type missing struct {
		name     string
		count    int
		firstPos int
	}
	var missingList []missing
	for name, t := range counts {
		short := len(t.begins) - len(t.ends)
		if short <= 0 {
			continue
		}
		// The begin event at index len(ends) is the first one no closer
		// accounts for.
		firstPos := t.begins[len(t.ends)]
		missingList = append(missingList, missing{name: name, count: short, firstPos: firstPos})
	}
	if len(missingList) == 0 {
		return result
	}
	sort.Slice(missingList, func(i, j int) bool { return missingList[i].firstPos < missingList[j].firstPos })

	var sb strings.Builder
	sb.WriteString(result)
	for _, m := range missingList {
		for i := 0; i < m.count; i++ {
			if !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteString("\n")
			}
			sb.WriteString(`\end{` + m.name + `}`)
		}
		logger.Debug("appended missing closers",
			logger.String("region", m.name), logger.Int("count", m.count))
	}
	sb.WriteString("\n")
	return sb.String()
}

// swapAdjacentClosers fixes the common case of an outer region closed
// immediately before its inner one: \end{table}\end{tabularx} becomes
// \end{tabularx}\end{table} for every registered containment pair.
func swapAdjacentClosers(content string, vocab *Vocabulary) string {
	result := content
	for inner, outer := range vocab.nestsIn {
		pattern := regexp.MustCompile(
			`(\\end\{` + regexp.QuoteMeta(outer) + `\})(\s*)(\\end\{` + regexp.QuoteMeta(inner) + `\})`)
		for {
			swapped := pattern.ReplaceAllString(result, "$3$2$1")
			if swapped == result {
				break
			}
			logger.Debug("swapped reversed closers",
				logger.String("inner", inner), logger.String("outer", outer))
			result = swapped
		}
	}
	return result
}

// repairNestingOrder walks the buffer with a stack restricted to names that
// participate in a containment relationship. When a close matches the second
// stack entry rather than the top, and the top is known to nest inside the
// closed name, a close for the top is synthesized immediately before it. Any
// later orphaned close of the same name is removed so counts stay balanced.
func repairNestingOrder(content string, vocab *Vocabulary) string {
	events := scanRegions(content, vocab)

	type edit struct {
		pos    int
		insert string // empty means delete [pos, delEnd)
		delEnd int
	}
	var edits []edit
	var stack []string
	credit := make(map[string]int) // synthesized closes owed a removal

	for _, ev := range events {
		if !vocab.inContainment(ev.name) {
			continue
		}
		if ev.isBegin {
			stack = append(stack, ev.name)
			continue
		}

		switch {
		case len(stack) > 0 && stack[len(stack)-1] == ev.name:
			stack = stack[:len(stack)-1]
		case len(stack) > 1 && stack[len(stack)-2] == ev.name && vocab.NestsIn(stack[len(stack)-1], ev.name):
			top := stack[len(stack)-1]
			edits = append(edits, edit{pos: ev.start, insert: `\end{` + top + `}` + "\n"})
			credit[top]++
			stack = stack[:len(stack)-2]
			logger.Debug("synthesized missing inner close",
				logger.String("inner", top), logger.String("outer", ev.name))
		case !stackContains(stack, ev.name) && credit[ev.name] > 0:
			// Orphaned close paid for by an earlier synthesized one.
			edits = append(edits, edit{pos: ev.start, delEnd: ev.end})
			credit[ev.name]--
		default:
			// Mismatch we do not understand: drop the matching open if one
			// exists somewhere below, leave the text alone.
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == ev.name {
					stack = append(stack[:i], stack[i+1:]...)
					break
				}
			}
		}
	}

	if len(edits) == 0 {
		return content
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].pos > edits[j].pos })
	result := content
	for _, e := range edits {
		if e.insert != "" {
			result = result[:e.pos] + e.insert + result[e.pos:]
		} else {
			result = result[:e.pos] + result[e.delEnd:]
		}
	}
	return result
}

func stackContains(stack []string, name string) bool {
	for _, n := range stack {
		if n == name {
			return true
		}
	}
	return false
}

// closeOpenBraces appends missing closing braces for unescaped brace groups
// left open at the end of the buffer. A brace preceded by a backslash does
// not count. An unescaped closing brace at depth zero is unrecoverable and
// is left in place; inventing an opener could corrupt meaning.
func closeOpenBraces(content string) string {
	depth := 0
	for i := 0; i < len(content); i++ {
		c := content[i]
		if c != '{' && c != '}' {
			continue
		}
		if i > 0 && content[i-1] == '\\' {
			continue
		}
		if c == '{' {
			depth++
		} else if depth > 0 {
			depth--
		}
	}
	if depth == 0 {
		return content
	}
	logger.Debug("closing open brace groups", logger.Int("count", depth))
	return content + strings.Repeat("}", depth)
}

// CountRegion returns the number of \begin and \end markers for name.
// Exposed for invariant checks in callers and tests.
func CountRegion(content, name string) (begins, ends int) {
	begins = strings.Count(content, fmt.Sprintf(`\begin{%s}`, name))
	ends = strings.Count(content, fmt.Sprintf(`\end{%s}`, name))
	return begins, ends
}
