package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	lacc "github.com/rnshah9/lacc-go"
)

func main() {
	var (
		inputPath   = flag.String("input", "", "Path to the preprocessed C source file")
		symbolsOnly = flag.Bool("symbols-only", false, "Output symbol metadata instead of the IR listing")
		noFold      = flag.Bool("no-fold", false, "Disable compile time constant folding")
		pointerSize = flag.Int("pointer-size", 8, "Target pointer width in bytes")
	)
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("Input not informed")
	}

	inputData, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Can't read input file: %s", err.Error())
	}

	cfg := lacc.NewConfig()
	cfg.SetBool("parser.fold_constants", !*noFold)
	cfg.SetInt("target.pointer_size", *pointerSize)

	scanner := lacc.NewScanner(inputData)
	parser := lacc.NewParserConfig(cfg, scanner)

	for {
		decl, err := parser.ParseNext()
		if err != nil {
			log.Fatalf("%+v", errors.Wrap(err, "parse failed"))
		}
		if decl == nil {
			break
		}
		if *symbolsOnly {
			if decl.Fun != nil {
				fmt.Printf("%s: %s\n", decl.Fun.Name, decl.Fun.Type)
			}
			continue
		}
		fmt.Print(decl.PrettyString())
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("%+v", err)
	}
}
