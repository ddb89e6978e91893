package main

import "testing"

func TestParseFlagsDefaults(t *testing.T) {
	cfg, exit, code := parseFlags([]string{"./blocks"})
	if exit {
		t.Fatalf("unexpected exit with code %d", code)
	}
	if cfg.directory != "./blocks" {
		t.Errorf("directory = %q, want ./blocks", cfg.directory)
	}
	if cfg.startEpoch != 0 {
		t.Errorf("startEpoch = %d, want 0", cfg.startEpoch)
	}
	if cfg.hasEndEpoch {
		t.Error("hasEndEpoch should be false by default")
	}
	if !cfg.useLock {
		t.Error("useLock should default to true")
	}
	if cfg.lockFile != "lockfile.json" {
		t.Errorf("lockFile = %q, want lockfile.json", cfg.lockFile)
	}
}

func TestParseFlagsAllFlags(t *testing.T) {
	args := []string{
		"-start_epoch", "5",
		"-end_epoch", "7",
		"-pre_merge_accumulator_file", "/tmp/acc.bin",
		"-lockfile", "/tmp/lockfile.json",
		"-use_lock=false",
		"./blocks",
	}
	cfg, exit, _ := parseFlags(args)
	if exit {
		t.Fatal("unexpected exit")
	}
	if cfg.startEpoch != 5 {
		t.Errorf("startEpoch = %d, want 5", cfg.startEpoch)
	}
	if !cfg.hasEndEpoch || cfg.endEpoch != 7 {
		t.Errorf("endEpoch = %d (set=%v), want 7 (set=true)", cfg.endEpoch, cfg.hasEndEpoch)
	}
	if cfg.preMergeAccumulatorFile != "/tmp/acc.bin" {
		t.Errorf("preMergeAccumulatorFile = %q, want /tmp/acc.bin", cfg.preMergeAccumulatorFile)
	}
	if cfg.lockFile != "/tmp/lockfile.json" {
		t.Errorf("lockFile = %q, want /tmp/lockfile.json", cfg.lockFile)
	}
	if cfg.useLock {
		t.Error("useLock should be false")
	}
	if cfg.directory != "./blocks" {
		t.Errorf("directory = %q, want ./blocks", cfg.directory)
	}
}

func TestParseFlagsMissingDirectoryExits(t *testing.T) {
	_, exit, code := parseFlags([]string{})
	if !exit || code == 0 {
		t.Fatalf("expected a nonzero-exit error for a missing directory argument, got exit=%v code=%d", exit, code)
	}
}

func TestRunFailsOnMissingDirectory(t *testing.T) {
	if code := run([]string{"/nonexistent/directory/path"}); code == 0 {
		t.Fatal("expected a nonzero exit code for a missing directory")
	}
}
