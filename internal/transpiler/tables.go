package transpiler

import (
	"regexp"
	"strings"
)

var (
	tableEnvPattern   = regexp.MustCompile(`(?s)\\begin\{table\}(?:\[[^\]]*\])?(.*?)\\end\{table\}`)
	tabularEnvPattern = regexp.MustCompile(`(?s)\\begin\{(tabularx|tabular)\}(.*?)\\end\{(?:tabularx|tabular)\}`)
	captionPattern    = regexp.MustCompile(`\\caption\{([^{}]*)\}`)
	rulePattern       = regexp.MustCompile(`\\(?:toprule|bottomrule|hline)\b`)
)

// convertTables restructures tabular blocks into target-dialect tables. The
// caption, if present, becomes the table's caption element; rule markers are
// dropped, with the header rule deciding where thead ends; rows split on the
// row separator and cells on unescaped column separators.
func convertTables(content string) string {
	result := tableEnvPattern.ReplaceAllStringFunc(content, func(block string) string {
		inner := tableEnvPattern.FindStringSubmatch(block)[1]
		return convertTableBlock(inner)
	})

	// A tabular block the generator emitted without the table wrapper still
	// converts, just without a caption.
	result = tabularEnvPattern.ReplaceAllStringFunc(result, func(block string) string {
		return convertTableBlock(block)
	})

	return result
}

func convertTableBlock(block string) string {
	caption := ""
	body := captionPattern.ReplaceAllStringFunc(block, func(m string) string {
		caption = captionPattern.FindStringSubmatch(m)[1]
		return ""
	})

	cells := extractTabularContent(body)
	if cells == "" {
		// No tabular region inside; nothing table-shaped to emit.
		return ""
	}

	headerRows, bodyRows := splitRows(cells)

	var sb strings.Builder
	sb.WriteString("<table>\n")
	if caption != "" {
		sb.WriteString("<caption>" + mapInline(caption) + "</caption>\n")
	}
	if len(headerRows) > 0 {
		sb.WriteString("<thead>\n")
		for _, row := range headerRows {
			writeRow(&sb, row, "th")
		}
		sb.WriteString("</thead>\n")
	}
	if len(bodyRows) > 0 {
		sb.WriteString("<tbody>\n")
		for _, row := range bodyRows {
			writeRow(&sb, row, "td")
		}
		sb.WriteString("</tbody>\n")
	}
	sb.WriteString("</table>")
	return sb.String()
}

// extractTabularContent returns the row content of the first tabular region
// in body, with the environment tags and width/column-spec arguments
// removed. Returns "" when body holds no tabular region.
func extractTabularContent(body string) string {
	loc := regexp.MustCompile(`\\begin\{(?:tabularx|tabular)\}`).FindStringIndex(body)
	var content string
	if loc == nil {
		// Already unwrapped by the caller's pattern match.
		content = body
	} else {
		rest := body[loc[1]:]
		rest = skipArgumentGroups(rest)
		if end := regexp.MustCompile(`\\end\{(?:tabularx|tabular)\}`).FindStringIndex(rest); end != nil {
			rest = rest[:end[0]]
		}
		content = rest
	}
	return strings.TrimSpace(content)
}

// skipArgumentGroups consumes leading {...} and [...] argument groups,
// brace-aware so a width like {\textwidth} is swallowed whole.
func skipArgumentGroups(s string) string {
	for {
		s = strings.TrimLeft(s, " \t")
		if strings.HasPrefix(s, "{") {
			depth := 0
			i := 0
			for ; i < len(s); i++ {
				if s[i] == '{' {
					depth++
				} else if s[i] == '}' {
					depth--
					if depth == 0 {
						i++
						break
					}
				}
			}
			s = s[i:]
			continue
		}
		if strings.HasPrefix(s, "[") {
			if end := strings.IndexByte(s, ']'); end >= 0 {
				s = s[end+1:]
				continue
			}
		}
		return s
	}
}

// splitRows splits tabular content on the row separator, drops rule markers,
// and uses the position of the header rule to decide where the header ends.
func splitRows(content string) (header, body [][]string) {
	segments := strings.Split(content, `\\`)
	var rows [][]string
	headerEnd := 0

	for _, seg := range segments {
		if strings.Contains(seg, `\midrule`) {
			headerEnd = len(rows)
			seg = strings.ReplaceAll(seg, `\midrule`, "")
		}
		seg = rulePattern.ReplaceAllString(seg, "")
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		rows = append(rows, splitCells(seg))
	}

	return rows[:headerEnd], rows[headerEnd:]
}

// splitCells splits a row on unescaped column separators and converts any
// inline markers the earlier passes have not reached inside the row.
func splitCells(row string) []string {
	var cells []string
	var cur strings.Builder
	for i := 0; i < len(row); i++ {
		c := row[i]
		if c == '&' && (i == 0 || row[i-1] != '\\') {
			cells = append(cells, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	cells = append(cells, cur.String())

	for i, cell := range cells {
		cells[i] = mapInline(strings.TrimSpace(cell))
	}
	return cells
}

func writeRow(sb *strings.Builder, cells []string, tag string) {
	sb.WriteString("<tr>")
	for _, cell := range cells {
		sb.WriteString("<" + tag + ">" + cell + "</" + tag + ">")
	}
	sb.WriteString("</tr>\n")
}
