package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/jerbob92/jnibind/generator/generator"
)

var (
	fileName string
	table    *string
	output   *string
	verbose  *bool
)

func init() {
	fileName = os.Getenv("GOFILE")
	table = flag.String("table", "bindings.toml", "the binding table to process")
	output = flag.String("o", "bindings.go", "the file to write the bindings to")
	verbose = flag.Bool("v", false, "enable verbose logging")
}

func Usage() {
	fmt.Fprintf(os.Stderr, "Usage of jnibind/generator:\n")
	fmt.Fprintf(os.Stderr, "\tgenerator [flags]\n")
	fmt.Fprintf(os.Stderr, "Meant to be run through go:generate, for example:\n")
	fmt.Fprintf(os.Stderr, "\t//go:generate go run github.com/jerbob92/jnibind/generator -table bindings.toml\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = Usage
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	dir, err := filepath.Abs(".")
	if err != nil {
		panic(err)
	}

	err = generator.Generate(dir, fileName, *table, *output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
