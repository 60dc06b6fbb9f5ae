// Package sanitizer turns raw generated chapter markup into a self-contained,
// balanced authoring-dialect fragment. The generator is trusted for content
// but not for syntax: fragments arrive with unclosed environments, leaked
// document scaffolding, and echoed lines from its own instructions.
package sanitizer

import (
	"fmt"
	"regexp"
	"strings"

	"ebook-markup/internal/balance"
	"ebook-markup/internal/logger"
)

// Callout environment names the authoring dialect defines.
const (
	EnvTip     = "tipbox"
	EnvKey     = "keybox"
	EnvWarning = "warningbox"
	EnvExample = "examplebox"
)

// DocumentVocabulary returns the closed set of region names the sanitizer
// repairs: the four callout kinds plus the structural environments. Marker
// names outside this set pass through untouched.
func DocumentVocabulary() *balance.Vocabulary {
	v := balance.NewVocabulary(
		EnvTip, EnvKey, EnvWarning, EnvExample,
		"table", "tabularx", "itemize", "enumerate", "quote", "wrapfigure",
	)
	v.AddContainment("tabularx", "table")
	return v
}

// instructionEchoPrefixes are literal line prefixes the generator is known to
// echo from its prompt into the output. Matching is prefix-literal only; no
// semantic detection is attempted.
var instructionEchoPrefixes = []string{
	"You are an expert",
	"You are a professional",
	"Write the chapter",
	"Write this chapter",
	"Napisz rozdzia",
	"Pamietaj, aby",
	"IMPORTANT:",
	"WAZNE:",
	"Remember to use",
	"Do not include",
	"Output only the",
	"Use \\begin{tipbox}",
	"Here is the chapter",
	"Oto rozdzia",
}

var (
	documentClassPattern = regexp.MustCompile(`(?m)^\\documentclass.*$`)
	usePackagePattern    = regexp.MustCompile(`(?m)^\\usepackage.*$`)
)

// DefaultMaxBlankLines is the run of blank lines kept when Options leaves
// MaxBlankLines unset.
const DefaultMaxBlankLines = 2

// Options configures a Sanitizer beyond its defaults.
type Options struct {
	// ExtraEchoPrefixes extends the built-in instruction-echo prefix list.
	ExtraEchoPrefixes []string
	// MaxBlankLines is the blank-line limit: runs more than one line over
	// it collapse down to it. Zero or negative selects
	// DefaultMaxBlankLines.
	MaxBlankLines int
}

// Sanitizer repairs and cleans authoring-dialect fragments. The zero-cost
// constructor New is sufficient for almost all callers.
type Sanitizer struct {
	vocab        *balance.Vocabulary
	echoPrefixes []string
	blankRun     *regexp.Regexp
	blankRepl    string
}

// New creates a Sanitizer with the document vocabulary and built-in echo
// prefixes.
func New() *Sanitizer {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Sanitizer with additional echo prefixes and a
// custom blank-line limit.
func NewWithOptions(opts Options) *Sanitizer {
	prefixes := make([]string, 0, len(instructionEchoPrefixes)+len(opts.ExtraEchoPrefixes))
	prefixes = append(prefixes, instructionEchoPrefixes...)
	prefixes = append(prefixes, opts.ExtraEchoPrefixes...)

	maxBlank := opts.MaxBlankLines
	if maxBlank <= 0 {
		maxBlank = DefaultMaxBlankLines
	}
	// A run of n blank lines spans n+1 newlines; anything past one line over
	// the limit collapses down to the limit itself.
	return &Sanitizer{
		vocab:        DocumentVocabulary(),
		echoPrefixes: prefixes,
		blankRun:     regexp.MustCompile(fmt.Sprintf(`\n{%d,}`, maxBlank+3)),
		blankRepl:    strings.Repeat("\n", maxBlank+1),
	}
}

// Sanitize returns a self-contained fragment: no wrapping-document
// scaffolding, no instruction echoes, every known region balanced. It is
// total and idempotent. Scaffolding and echo lines are removed before the
// structural repair so that a marker mentioned inside an echoed instruction
// cannot unbalance the repaired result.
func (s *Sanitizer) Sanitize(content string) string {
	result := stripScaffolding(content)
	result = s.stripInstructionEchoes(result)
	result = balance.Repair(result, s.vocab)
	result = s.collapseBlankLines(result)

	if result != content {
		logger.Debug("sanitizer made changes",
			logger.Int("inLen", len(content)),
			logger.Int("outLen", len(result)))
	}
	return result
}

// Sanitize runs a default Sanitizer over content.
func Sanitize(content string) string {
	return New().Sanitize(content)
}

// stripScaffolding removes wrapping-document structure the generator leaked:
// the preamble up to \begin{document}, everything from \end{document} on,
// and stray \documentclass or \usepackage lines.
func stripScaffolding(content string) string {
	result := content

	if idx := strings.Index(result, `\begin{document}`); idx >= 0 {
		result = result[idx+len(`\begin{document}`):]
	}
	if idx := strings.Index(result, `\end{document}`); idx >= 0 {
		result = result[:idx]
	}

	result = documentClassPattern.ReplaceAllString(result, "")
	result = usePackagePattern.ReplaceAllString(result, "")

	return result
}

// stripInstructionEchoes drops lines that start with a known instruction
// prefix after leading whitespace.
func (s *Sanitizer) stripInstructionEchoes(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	removed := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if s.isInstructionEcho(trimmed) {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	if removed > 0 {
		logger.Debug("stripped instruction echoes", logger.Int("lines", removed))
	}
	return strings.Join(kept, "\n")
}

func (s *Sanitizer) isInstructionEcho(line string) bool {
	for _, prefix := range s.echoPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// collapseBlankLines reduces runs of blank lines more than one over the
// configured limit down to the limit; with the default of two, more than
// three blank lines in a row become two.
func (s *Sanitizer) collapseBlankLines(content string) string {
	return s.blankRun.ReplaceAllString(content, s.blankRepl)
}
