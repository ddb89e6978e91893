// Command era_validate validates a contiguous range of epochs against the
// trusted pre-merge accumulator. The on-disk sync lock is written once, after
// the whole range has validated; a failing run leaves it unchanged.
//
// Usage:
//
//	era_validate <directory> [--start_epoch N] [--end_epoch N] [--pre_merge_accumulator_file path]
package main

import (
	"fmt"
	"os"

	"github.com/semiotic-ai/header-accumulator/pkg/accumulator"
	"github.com/semiotic-ai/header-accumulator/pkg/blocksource"
	"github.com/semiotic-ai/header-accumulator/pkg/log"
	"github.com/semiotic-ai/header-accumulator/pkg/premerge"
	"github.com/semiotic-ai/header-accumulator/pkg/synclock"
	"github.com/semiotic-ai/header-accumulator/pkg/validator"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code so it can be
// tested in isolation without calling os.Exit.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		if code != 0 {
			fmt.Fprintln(os.Stderr, "usage: era_validate <directory> [--start_epoch N] [--end_epoch N] [--pre_merge_accumulator_file path]")
		}
		return code
	}

	logger := log.Module("era_validate")
	logger.Info("era_validate starting", "directory", cfg.directory, "start_epoch", cfg.startEpoch)

	records, err := blocksource.DecodeDirectory(cfg.directory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var pm *premerge.Accumulator
	if cfg.preMergeAccumulatorFile != "" {
		pm, err = premerge.Load(cfg.preMergeAccumulatorFile)
	} else {
		pm, err = premerge.Default()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var lock *synclock.Lock
	if cfg.useLock {
		lock, err = synclock.Load(cfg.lockFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	var endEpoch *int
	if cfg.hasEndEpoch {
		endEpoch = &cfg.endEpoch
	}

	src := accumulator.NewSliceSource(records)
	validated, err := validator.Validate(src, pm, lock, cfg.startEpoch, endEpoch, cfg.useLock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.useLock && lock != nil {
		if err := lock.Persist(cfg.lockFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	fmt.Printf("validated epochs: %v\n", validated)
	return 0
}
