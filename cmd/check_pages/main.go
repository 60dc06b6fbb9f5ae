// Command check_pages validates a compiled book PDF for completeness: page
// count and the presence of every expected chapter title.
//
// Usage:
//
//	check_pages --chapter "Introduction" --chapter "Getting Started" book.pdf
//	check_pages --chapters chapters.txt --min-pages 20 book.pdf
//
// Exits 2 when the book is incomplete.
package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"ebook-markup/internal/pdfcheck"
)

func main() {
	var (
		chapters     = flag.StringArray("chapter", nil, "expected chapter title (repeatable)")
		chaptersFile = flag.String("chapters", "", "file with one expected chapter title per line")
		minPages     = flag.Int("min-pages", 1, "smallest plausible page count")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: check_pages [flags] <book.pdf>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	pdfPath := flag.Arg(0)

	expected := *chapters
	if *chaptersFile != "" {
		data, err := os.ReadFile(*chaptersFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				expected = append(expected, line)
			}
		}
	}

	v := pdfcheck.NewValidator()
	v.MinPages = *minPages

	report, err := v.Validate(pdfPath, expected)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(pdfcheck.FormatReport(report))
	if !report.IsComplete {
		os.Exit(2)
	}
}
