package premerge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLoadsEmbeddedAccumulator(t *testing.T) {
	acc, err := Default()
	if err != nil {
		t.Fatalf("Default(): %v", err)
	}
	if acc.Len() != epochCount {
		t.Fatalf("Len() = %d, want %d", acc.Len(), epochCount)
	}
	root, err := acc.RootAt(0)
	if err != nil {
		t.Fatalf("RootAt(0): %v", err)
	}
	if root == ([32]byte{}) {
		t.Fatal("embedded epoch 0 root should not be zero")
	}
}

func TestRootAtOutOfRange(t *testing.T) {
	acc, err := Default()
	if err != nil {
		t.Fatalf("Default(): %v", err)
	}
	if _, err := acc.RootAt(-1); err == nil {
		t.Fatal("expected an error for negative epoch")
	}
	if _, err := acc.RootAt(epochCount); err == nil {
		t.Fatal("expected an error for epoch == epochCount")
	}
}

func TestLoadRoundTripsWithDefaultData(t *testing.T) {
	data, err := defaultData.ReadFile("default_accumulator.bin")
	if err != nil {
		t.Fatalf("reading embedded data: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "accumulator.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def, _ := Default()
	for e := 0; e < epochCount; e++ {
		a, _ := loaded.RootAt(e)
		b, _ := def.RootAt(e)
		if a != b {
			t.Fatalf("epoch %d mismatch between Load and Default", e)
			break
		}
	}
}

func TestLoadRejectsWrongSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidPreMergeAccumulatorFile) {
		t.Fatalf("expected ErrInvalidPreMergeAccumulatorFile, got %v", err)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
