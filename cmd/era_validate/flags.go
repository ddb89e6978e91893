package main

import "flag"

// config holds era_validate's resolved CLI arguments.
type config struct {
	directory               string
	startEpoch              int
	endEpoch                int
	hasEndEpoch             bool
	preMergeAccumulatorFile string
	lockFile                string
	useLock                 bool
}

// parseFlags parses CLI arguments into a config. Returns the config,
// whether the caller should exit immediately, and the exit code.
func parseFlags(args []string) (config, bool, int) {
	var cfg config
	fs := flag.NewFlagSet("era_validate", flag.ContinueOnError)
	fs.IntVar(&cfg.startEpoch, "start_epoch", 0, "first epoch to validate (inclusive)")
	endEpoch := fs.Int("end_epoch", 0, "last epoch to validate (exclusive); defaults to start_epoch+1")
	fs.StringVar(&cfg.preMergeAccumulatorFile, "pre_merge_accumulator_file", "", "path to the trusted pre-merge accumulator file; uses the embedded default when empty")
	fs.StringVar(&cfg.lockFile, "lockfile", "lockfile.json", "path to the sync lock file")
	fs.BoolVar(&cfg.useLock, "use_lock", true, "consult and update the sync lock for idempotency")

	if err := fs.Parse(args); err != nil {
		return cfg, true, 2
	}

	if fs.NArg() < 1 {
		return cfg, true, 2
	}
	cfg.directory = fs.Arg(0)

	if isFlagSet(fs, "end_epoch") {
		cfg.hasEndEpoch = true
		cfg.endEpoch = *endEpoch
	}

	return cfg, false, 0
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
