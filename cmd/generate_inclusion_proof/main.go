// Command generate_inclusion_proof builds Merkle inclusion proofs for a
// contiguous block interval and writes them as a JSON array of 15-element
// hex-hash arrays.
//
// Usage:
//
//	generate_inclusion_proof <directory> <start_block> <end_block> [--output_file path]
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/semiotic-ai/header-accumulator/pkg/accumulator"
	"github.com/semiotic-ai/header-accumulator/pkg/blocksource"
	"github.com/semiotic-ai/header-accumulator/pkg/log"
	"github.com/semiotic-ai/header-accumulator/pkg/proof"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		if code != 0 {
			fmt.Fprintln(os.Stderr, "usage: generate_inclusion_proof <directory> <start_block> <end_block> [--output_file path]")
		}
		return code
	}

	logger := log.Module("generate_inclusion_proof")
	logger.Info("generating inclusion proofs", "directory", cfg.directory, "start_block", cfg.startBlock, "end_block", cfg.endBlock)

	records, err := blocksource.DecodeDirectory(cfg.directory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	src := accumulator.NewSliceSource(records)
	proofs, err := proof.Generate(src, cfg.startBlock, cfg.endBlock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	wire := make([][15]string, len(proofs))
	for i, p := range proofs {
		var branch [15]string
		for j, sibling := range p.Branch {
			branch[j] = fmt.Sprintf("0x%x", sibling)
		}
		wire[i] = branch
	}

	data, err := json.Marshal(wire)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.outputFile == "" {
		fmt.Println(string(data))
		return 0
	}
	if err := os.WriteFile(cfg.outputFile, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
