// Package pdfcheck inspects a compiled book PDF for completeness. The engine
// never compiles anything itself; this runs after the external compiler to
// catch chapters that a silently-degraded fragment may have swallowed.
package pdfcheck

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"ebook-markup/internal/logger"
	"ebook-markup/internal/types"
)

// Report is the result of a completeness check.
type Report struct {
	PageCount       int      `json:"page_count"`
	ChaptersFound   []string `json:"chapters_found"`
	ChaptersMissing []string `json:"chapters_missing"`
	IsComplete      bool     `json:"is_complete"`
}

// Validator checks compiled PDFs against the chapter list the book was
// generated from.
type Validator struct {
	// MinPages is the smallest page count considered plausible.
	MinPages int
}

// NewValidator creates a Validator with a one-page minimum.
func NewValidator() *Validator {
	return &Validator{MinPages: 1}
}

// Validate counts pages and searches the extracted text for every expected
// chapter title. The check is case- and whitespace-insensitive; PDF text
// extraction mangles both freely.
func (v *Validator) Validate(pdfPath string, expectedChapters []string) (*Report, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, types.NewAppError(types.ErrFileNotFound, "pdf not found: "+pdfPath, err)
	}

	pageCount, err := api.PageCountFile(pdfPath)
	if err != nil {
		return nil, types.NewAppError(types.ErrPDFCheck, "failed to count pages", err)
	}

	text, err := extractText(pdfPath)
	if err != nil {
		return nil, err
	}
	normalized := normalize(text)

	report := &Report{PageCount: pageCount}
	for _, chapter := range expectedChapters {
		if strings.Contains(normalized, normalize(chapter)) {
			report.ChaptersFound = append(report.ChaptersFound, chapter)
		} else {
			report.ChaptersMissing = append(report.ChaptersMissing, chapter)
		}
	}
	report.IsComplete = len(report.ChaptersMissing) == 0 && pageCount >= v.MinPages

	logger.Info("pdf completeness check finished",
		logger.String("path", pdfPath),
		logger.Int("pages", pageCount),
		logger.Int("missingChapters", len(report.ChaptersMissing)),
		logger.Bool("isComplete", report.IsComplete))

	return report, nil
}

// extractText concatenates the plain text of every page.
func extractText(pdfPath string) (string, error) {
	f, r, err := ledongthuc.Open(pdfPath)
	if err != nil {
		return "", types.NewAppError(types.ErrPDFCheck, "cannot open pdf", err)
	}
	defer f.Close()

	var sb strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("failed to extract text from page",
				logger.Int("page", pageNum), logger.Err(err))
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

var whitespacePattern = regexp.MustCompile(`\s+`)

func normalize(s string) string {
	return strings.ToLower(whitespacePattern.ReplaceAllString(strings.TrimSpace(s), " "))
}

// FormatReport renders a Report for console output.
func FormatReport(r *Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pages: %d\n", r.PageCount))
	sb.WriteString(fmt.Sprintf("Chapters found: %d\n", len(r.ChaptersFound)))
	if len(r.ChaptersMissing) > 0 {
		sb.WriteString("Missing chapters:\n")
		for _, c := range r.ChaptersMissing {
			sb.WriteString("  - " + c + "\n")
		}
	}
	if r.IsComplete {
		sb.WriteString("Result: COMPLETE\n")
	} else {
		sb.WriteString("Result: INCOMPLETE\n")
	}
	return sb.String()
}
