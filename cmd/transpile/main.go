// Command transpile converts a sanitized authoring-dialect fragment into an
// XHTML fragment for the e-book packager.
//
// Usage:
//
//	transpile --title "Chapter 1" [--lang pl] [--in chapter.tex] [--out chapter.xhtml]
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"ebook-markup/internal/config"
	"ebook-markup/internal/encoding"
	"ebook-markup/internal/logger"
	"ebook-markup/internal/transpiler"
)

func main() {
	var (
		inPath     = flag.String("in", "", "input fragment (default stdin)")
		outPath    = flag.String("out", "", "output file (default stdout)")
		title      = flag.String("title", "", "fragment display title")
		lang       = flag.String("lang", "", "BCP 47 language tag for localized labels")
		configPath = flag.String("config", "", "config file path")
		verbose    = flag.BoolP("verbose", "v", false, "enable debug logging")
	)
	flag.Parse()

	mgr, err := config.NewManager(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := mgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg := mgr.Config()

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	if *verbose {
		logCfg.Level = logger.LevelDebug
	}
	logCfg.LogFilePath = cfg.LogFilePath
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if *lang == "" {
		*lang = cfg.DefaultLanguage
	}

	var raw []byte
	if *inPath == "" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(*inPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	content, err := encoding.Normalize(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result := transpiler.Transpile(content, *title, *lang)

	if *outPath == "" {
		_, err = io.WriteString(os.Stdout, result)
	} else {
		err = os.WriteFile(*outPath, []byte(result), 0644)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
