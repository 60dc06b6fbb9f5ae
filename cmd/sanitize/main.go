// Command sanitize repairs a generated authoring-dialect fragment into a
// self-contained, balanced one ready for the document compiler.
//
// Usage:
//
//	sanitize [--in chapter.tex] [--out chapter_clean.tex]
//
// With no --in the fragment is read from stdin; with no --out the result is
// written to stdout.
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"ebook-markup/internal/config"
	"ebook-markup/internal/encoding"
	"ebook-markup/internal/logger"
	"ebook-markup/internal/sanitizer"
)

func main() {
	var (
		inPath     = flag.String("in", "", "input fragment (default stdin)")
		outPath    = flag.String("out", "", "output file (default stdout)")
		configPath = flag.String("config", "", "config file path")
		verbose    = flag.BoolP("verbose", "v", false, "enable debug logging")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	raw, err := readInput(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	content, err := encoding.Normalize(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s := sanitizer.NewWithOptions(sanitizer.Options{
		ExtraEchoPrefixes: cfg.ExtraEchoPrefixes,
		MaxBlankLines:     cfg.MaxBlankLines,
	})
	result := s.Sanitize(content)

	if err := writeOutput(*outPath, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string, verbose bool) (*configResult, error) {
	mgr, err := config.NewManager(path)
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	cfg := mgr.Config()

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	if verbose {
		logCfg.Level = logger.LevelDebug
	}
	logCfg.LogFilePath = cfg.LogFilePath
	if err := logger.Init(logCfg); err != nil {
		return nil, err
	}

	return &configResult{
		ExtraEchoPrefixes: cfg.ExtraEchoPrefixes,
		MaxBlankLines:     cfg.MaxBlankLines,
	}, nil
}

type configResult struct {
	ExtraEchoPrefixes []string
	MaxBlankLines     int
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path, content string) error {
	if path == "" {
		_, err := io.WriteString(os.Stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
