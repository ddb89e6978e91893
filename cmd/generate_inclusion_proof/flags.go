package main

import (
	"flag"
	"fmt"
	"strconv"
)

// config holds generate_inclusion_proof's resolved CLI arguments.
type config struct {
	directory  string
	startBlock uint64
	endBlock   uint64
	outputFile string
}

// parseFlags parses CLI arguments into a config.
func parseFlags(args []string) (config, bool, int) {
	var cfg config
	fs := flag.NewFlagSet("generate_inclusion_proof", flag.ContinueOnError)
	fs.StringVar(&cfg.outputFile, "output_file", "", "path to write the JSON proof array to; defaults to stdout")

	if err := fs.Parse(args); err != nil {
		return cfg, true, 2
	}

	if fs.NArg() < 3 {
		return cfg, true, 2
	}
	cfg.directory = fs.Arg(0)

	startBlock, err := strconv.ParseUint(fs.Arg(1), 10, 64)
	if err != nil {
		fmt.Printf("invalid start_block %q: %v\n", fs.Arg(1), err)
		return cfg, true, 2
	}
	cfg.startBlock = startBlock

	endBlock, err := strconv.ParseUint(fs.Arg(2), 10, 64)
	if err != nil {
		fmt.Printf("invalid end_block %q: %v\n", fs.Arg(2), err)
		return cfg, true, 2
	}
	cfg.endBlock = endBlock

	return cfg, false, 0
}
