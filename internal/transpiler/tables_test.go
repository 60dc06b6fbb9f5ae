package transpiler

import (
	"strings"
	"testing"
)

const sampleTable = `\begin{table}[h]
\caption{Results}
\begin{tabularx}{\textwidth}{lr}
\toprule
Name & Score \\
\midrule
Anna & 10 \\
Ben & 8 \\
\bottomrule
\end{tabularx}
\end{table}`

// ============================================================
// Full Table Conversion
// ============================================================

func TestConvertTables_FullTable(t *testing.T) {
	got := convertTables(sampleTable)

	want := "<table>\n" +
		"<caption>Results</caption>\n" +
		"<thead>\n" +
		"<tr><th>Name</th><th>Score</th></tr>\n" +
		"</thead>\n" +
		"<tbody>\n" +
		"<tr><td>Anna</td><td>10</td></tr>\n" +
		"<tr><td>Ben</td><td>8</td></tr>\n" +
		"</tbody>\n" +
		"</table>"

	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestConvertTables_ShapePreserved(t *testing.T) {
	// Row and column counts of the source survive conversion.
	tests := []struct {
		name     string
		input    string
		wantRows int
		wantCols int
	}{
		{
			name:     "2x2 with header",
			input:    sampleTable,
			wantRows: 3, // header + 2 body
			wantCols: 2,
		},
		{
			name: "3 columns no header",
			input: `\begin{tabularx}{\textwidth}{lll}
a & b & c \\
d & e & f \\
\end{tabularx}`,
			wantRows: 2,
			wantCols: 3,
		},
		{
			name: "single cell",
			input: `\begin{tabular}{c}
only \\
\end{tabular}`,
			wantRows: 1,
			wantCols: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertTables(tt.input)

			rows := strings.Count(got, "<tr>")
			if rows != tt.wantRows {
				t.Errorf("row count: got %d, want %d\n%s", rows, tt.wantRows, got)
			}
			cells := strings.Count(got, "<th>") + strings.Count(got, "<td>")
			if cells != tt.wantRows*tt.wantCols {
				t.Errorf("cell count: got %d, want %d\n%s", cells, tt.wantRows*tt.wantCols, got)
			}
		})
	}
}

// ============================================================
// Header Boundary
// ============================================================

func TestConvertTables_NoMidruleMeansNoHeader(t *testing.T) {
	input := `\begin{tabularx}{\textwidth}{ll}
a & b \\
c & d \\
\end{tabularx}`
	got := convertTables(input)

	if strings.Contains(got, "<thead>") {
		t.Errorf("no header rule should mean no thead: %s", got)
	}
	if !strings.Contains(got, "<tbody>") {
		t.Errorf("tbody missing: %s", got)
	}
	if strings.Count(got, "<td>") != 4 {
		t.Errorf("want 4 td cells, got %d: %s", strings.Count(got, "<td>"), got)
	}
}

func TestConvertTables_RuleMarkersDropped(t *testing.T) {
	got := convertTables(sampleTable)
	for _, rule := range []string{`\toprule`, `\midrule`, `\bottomrule`, "toprule", "midrule"} {
		if strings.Contains(got, rule) {
			t.Errorf("rule marker survived: %q in %s", rule, got)
		}
	}
}

// ============================================================
// Cells
// ============================================================

func TestConvertTables_EscapedAmpersandStaysInCell(t *testing.T) {
	input := `\begin{tabular}{ll}
salt \& pepper & spices \\
\end{tabular}`
	got := convertTables(input)

	if strings.Count(got, "<td>") != 2 {
		t.Fatalf("escaped ampersand split the cell: %s", got)
	}
	if !strings.Contains(got, `salt \& pepper`) {
		t.Errorf("cell content altered: %s", got)
	}
}

func TestConvertTables_InlineMarkersInCells(t *testing.T) {
	input := `\begin{tabular}{ll}
\textbf{Habit} & \textit{Cue} \\
\end{tabular}`
	got := convertTables(input)

	if !strings.Contains(got, "<td><strong>Habit</strong></td>") {
		t.Errorf("bold cell not converted: %s", got)
	}
	if !strings.Contains(got, "<td><em>Cue</em></td>") {
		t.Errorf("italic cell not converted: %s", got)
	}
}

// ============================================================
// Wrappers and Degenerate Input
// ============================================================

func TestConvertTables_BareTabularConverts(t *testing.T) {
	input := `\begin{tabular}{cc}
x & y \\
\end{tabular}`
	got := convertTables(input)

	if !strings.Contains(got, "<table>") || !strings.Contains(got, "</table>") {
		t.Fatalf("bare tabular did not convert: %s", got)
	}
	if strings.Contains(got, "<caption>") {
		t.Errorf("bare tabular should have no caption: %s", got)
	}
}

func TestConvertTables_TableWithoutTabularDropped(t *testing.T) {
	input := `\begin{table}
\caption{Orphan}
\end{table}`
	got := convertTables(input)

	if strings.Contains(got, "<table>") {
		t.Errorf("table without rows should emit nothing table-shaped: %s", got)
	}
	if strings.Contains(got, `\begin{table}`) {
		t.Errorf("table wrapper survived: %s", got)
	}
}

func TestConvertTables_LeavesSurroundingTextAlone(t *testing.T) {
	input := "before\n" + sampleTable + "\nafter"
	got := convertTables(input)

	if !strings.HasPrefix(got, "before\n") || !strings.HasSuffix(got, "\nafter") {
		t.Errorf("surrounding text altered: %s", got)
	}
}
