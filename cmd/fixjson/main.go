// Command fixjson repairs a truncated JSON buffer from the generator's
// structured-output channel so it parses.
//
// Usage:
//
//	fixjson [--in plan.json] [--out plan_fixed.json]
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"ebook-markup/internal/encoding"
	"ebook-markup/internal/jsonrepair"
)

func main() {
	var (
		inPath  = flag.String("in", "", "input file (default stdin)")
		outPath = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	var raw []byte
	var err error
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

	result := jsonrepair.Repair(content)

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
