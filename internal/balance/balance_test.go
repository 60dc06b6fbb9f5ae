package balance

import (
	"strings"
	"testing"
)

func testVocabulary() *Vocabulary {
	v := NewVocabulary("tipbox", "warningbox", "itemize", "quote")
	v.AddContainment("tabularx", "table")
	return v
}

// ============================================================
// Count-Balance Pass
// ============================================================

func TestRepair_AppendsMissingClosers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string // closers expected in this order at the tail
	}{
		{
			name:  "single unclosed region",
			input: "\\begin{tipbox}\nsome advice\n",
			want:  []string{`\end{tipbox}`},
		},
		{
			name:  "two unclosed regions in open order",
			input: "\\begin{tipbox}\nA\n\\begin{warningbox}\nB\n",
			want:  []string{`\end{tipbox}`, `\end{warningbox}`},
		},
		{
			name:  "three opens one close",
			input: "\\begin{tipbox}a\\end{tipbox}\n\\begin{tipbox}b\n\\begin{tipbox}c\n",
			want:  []string{`\end{tipbox}`, `\end{tipbox}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.input, testVocabulary())

			for _, name := range []string{"tipbox", "warningbox"} {
				begins, ends := CountRegion(got, name)
				if begins != ends {
					t.Errorf("region %s unbalanced: %d begins, %d ends", name, begins, ends)
				}
			}

			// Appended closers must appear in order at the tail.
			tail := got[len(tt.input):]
			pos := -1
			for _, closer := range tt.want {
				idx := strings.Index(tail, closer)
				if idx < 0 {
					t.Fatalf("closer %s not appended, tail = %q", closer, tail)
				}
				if idx <= pos {
					t.Errorf("closer %s out of order in tail %q", closer, tail)
				}
				pos = idx
				tail = tail[:idx] + strings.Repeat(" ", len(closer)) + tail[idx+len(closer):]
			}
		})
	}
}

func TestRepair_RemovesExcessClosers(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "stray closer before any open",
			input: "\\end{tipbox}\ntext\n\\begin{tipbox}\nx\n\\end{tipbox}\n",
		},
		{
			name:  "closer with no open at all",
			input: "text\n\\end{warningbox}\nmore\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.input, testVocabulary())
			for _, name := range []string{"tipbox", "warningbox"} {
				begins, ends := CountRegion(got, name)
				if begins != ends {
					t.Errorf("region %s unbalanced after repair: %d/%d", name, begins, ends)
				}
			}
		})
	}
}

func TestRepair_RemovesFirstExcessCloser(t *testing.T) {
	input := "\\end{tipbox}\nintro\n\\begin{tipbox}\nx\n\\end{tipbox}\n"
	got := Repair(input, testVocabulary())

	if strings.HasPrefix(got, `\end{tipbox}`) {
		t.Errorf("first stray closer should be removed, got %q", got)
	}
	if !strings.Contains(got, "\\begin{tipbox}\nx\n\\end{tipbox}") {
		t.Errorf("genuine pair must survive, got %q", got)
	}
}

// ============================================================
// Adjacent-Swap Pass
// ============================================================

func TestRepair_SwapsReversedClosers(t *testing.T) {
	// Scenario: outer region closed immediately before the inner one.
	input := `\begin{table}\begin{tabularx}{\textwidth}{lr}\toprule A & B \\ \midrule 1 & 2 \\ \end{table}\end{tabularx}`
	got := Repair(input, testVocabulary())

	inner := strings.Index(got, `\end{tabularx}`)
	outer := strings.Index(got, `\end{table}`)
	if inner < 0 || outer < 0 {
		t.Fatalf("closers missing from output %q", got)
	}
	if inner > outer {
		t.Errorf("\\end{tabularx} must precede \\end{table}, got %q", got)
	}
	if !strings.Contains(got, `\end{tabularx}\end{table}`) {
		t.Errorf("expected adjacent swapped closers, got %q", got)
	}
}

func TestRepair_SwapPreservesWhitespace(t *testing.T) {
	input := "\\begin{table}\n\\begin{tabularx}{c}\nx\n\\end{table}\n\\end{tabularx}\n"
	got := Repair(input, testVocabulary())

	if !strings.Contains(got, "\\end{tabularx}\n\\end{table}") {
		t.Errorf("swap should keep the separating newline, got %q", got)
	}
}

// ============================================================
// Stack-Based Nesting Pass
// ============================================================

func TestRepair_SynthesizesDroppedInnerClose(t *testing.T) {
	// The inner close is missing where it belongs and its counterpart
	// appears much later, so the swap pass has nothing adjacent to swap.
	input := "\\begin{table}\n\\begin{tabularx}{c}\nrow\n\\end{table}\ntrailing prose\n\\end{tabularx}\n"
	got := Repair(input, testVocabulary())

	for _, name := range []string{"table", "tabularx"} {
		begins, ends := CountRegion(got, name)
		if begins != 1 || ends != 1 {
			t.Fatalf("region %s: got %d begins, %d ends, want 1/1\noutput: %q", name, begins, ends, got)
		}
	}
	if strings.Index(got, `\end{tabularx}`) > strings.Index(got, `\end{table}`) {
		t.Errorf("inner close must precede outer close, got %q", got)
	}
}

// ============================================================
// Brace-Depth Pass
// ============================================================

func TestRepair_BraceDepth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "one unclosed group",
			input: `\textbf{bold text`,
			want:  `\textbf{bold text}`,
		},
		{
			name:  "two unclosed groups",
			input: `{outer {inner`,
			want:  `{outer {inner}}`,
		},
		{
			name:  "escaped braces do not count",
			input: `50\% of \{values\}`,
			want:  `50\% of \{values\}`,
		},
		{
			name:  "escaped open with real group",
			input: `\{literal and {group`,
			want:  `\{literal and {group}`,
		},
		{
			name:  "closer before opener is unrecoverable",
			input: `} stray closer`,
			want:  `} stray closer`,
		},
		{
			name:  "balanced input unchanged",
			input: `a {b {c} d} e`,
			want:  `a {b {c} d} e`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.input, testVocabulary())
			if got != tt.want {
				t.Errorf("Repair() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestRepair_EscapedEscapeLimitation documents the known single-character
// escape assumption: a brace after a double backslash is still treated as
// escaped, so no closer is appended for it.
func TestRepair_EscapedEscapeLimitation(t *testing.T) {
	input := `line break \\{group`
	got := Repair(input, testVocabulary())
	if got != input {
		t.Errorf("double-backslash brace handling changed: got %q, want input unchanged", got)
	}
}

// ============================================================
// General Properties
// ============================================================

func TestRepair_UnknownRegionsPassThrough(t *testing.T) {
	input := "\\begin{mysteryenv}\nnever closed\n"
	got := Repair(input, testVocabulary())
	if got != input {
		t.Errorf("unknown region must not be repaired: got %q", got)
	}
}

func TestRepair_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text without any markers",
		"\\begin{tipbox}\nopen forever\n",
		"\\end{tipbox}\nstray\n",
		`\begin{table}\begin{tabularx}{c}{x}\end{table}\end{tabularx}`,
		"\\begin{table}\n\\begin{tabularx}{c}\nrow\n\\end{table}\nprose\n\\end{tabularx}\n",
		"unclosed {brace and \\begin{quote}text",
	}

	for _, input := range inputs {
		once := Repair(input, testVocabulary())
		twice := Repair(once, testVocabulary())
		if once != twice {
			t.Errorf("not idempotent for %q:\nonce:  %q\ntwice: %q", input, once, twice)
		}
	}
}

func TestRepair_EmptyInput(t *testing.T) {
	if got := Repair("", testVocabulary()); got != "" {
		t.Errorf("Repair(\"\") = %q, want empty", got)
	}
}

func TestVocabulary(t *testing.T) {
	v := testVocabulary()

	if !v.Knows("tipbox") {
		t.Error("tipbox should be known")
	}
	if v.Knows("document") {
		t.Error("document should not be known")
	}
	if !v.NestsIn("tabularx", "table") {
		t.Error("tabularx should nest in table")
	}
	if v.NestsIn("table", "tabularx") {
		t.Error("containment is directional")
	}
}
