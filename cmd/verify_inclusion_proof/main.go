// Command verify_inclusion_proof checks a previously generated inclusion
// proof file against a trusted pre-merge accumulator.
//
// Usage:
//
//	verify_inclusion_proof <directory> <start_block> <end_block> <inclusion_proof_file>
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/semiotic-ai/header-accumulator/pkg/blocksource"
	"github.com/semiotic-ai/header-accumulator/pkg/log"
	"github.com/semiotic-ai/header-accumulator/pkg/premerge"
	"github.com/semiotic-ai/header-accumulator/pkg/proof"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		if code != 0 {
			fmt.Fprintln(os.Stderr, "usage: verify_inclusion_proof <directory> <start_block> <end_block> <inclusion_proof_file>")
		}
		return code
	}

	logger := log.Module("verify_inclusion_proof")
	logger.Info("verifying inclusion proofs", "directory", cfg.directory, "start_block", cfg.startBlock, "end_block", cfg.endBlock)

	records, err := blocksource.DecodeDirectory(cfg.directory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	blocks := make([]proof.HeaderWithProof, 0, cfg.endBlock-cfg.startBlock+1)
	for _, r := range records {
		if r.BlockNumber < cfg.startBlock || r.BlockNumber > cfg.endBlock {
			continue
		}
		blocks = append(blocks, proof.HeaderWithProof{
			BlockHash:   r.BlockHash,
			BlockNumber: r.BlockNumber,
		})
	}

	proofData, err := os.ReadFile(cfg.inclusionProofFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	var wire [][15]string
	if err := json.Unmarshal(proofData, &wire); err != nil {
		fmt.Fprintf(os.Stderr, "Error: decoding %s: %v\n", cfg.inclusionProofFile, err)
		return 1
	}

	branches := make([]proof.Branch, len(wire))
	for i, entry := range wire {
		var branch proof.Branch
		for j, sibling := range entry {
			b, err := hexToBytes32(sibling)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: decoding branch %d sibling %d: %v\n", i, j, err)
				return 1
			}
			branch[j] = b
		}
		branches[i] = branch
	}

	var pm *premerge.Accumulator
	pm, err = premerge.Default()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := proof.Verify(blocks, pm, branches); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Println("ok")
	return 0
}

func hexToBytes32(s string) ([32]byte, error) {
	var out [32]byte
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
