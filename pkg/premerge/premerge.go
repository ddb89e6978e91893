// Package premerge implements the Pre-Merge Accumulator (C3): a trusted,
// immutable, ordered sequence of canonical per-epoch historical roots
// covering the pre-proof-of-stake history of the chain.
package premerge

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/semiotic-ai/header-accumulator/pkg/accumulator"
)

// ErrInvalidPreMergeAccumulatorFile is returned when a trusted accumulator
// file is present but cannot be parsed.
var ErrInvalidPreMergeAccumulatorFile = errors.New("premerge: invalid pre-merge accumulator file")

// ErrEpochOutOfRange is returned by RootAt for an epoch index outside
// [0, FinalEpoch+1].
var ErrEpochOutOfRange = errors.New("premerge: epoch out of range")

// epochCount is the number of addressable historical-epoch roots. The
// accumulator addresses epoch FINAL_EPOCH+1, which the validator accepts
// after filtering out records at or beyond MergeBlock, in addition to every
// epoch before it, so it holds FINAL_EPOCH + 2 entries (epochs
// 0..FINAL_EPOCH+1 inclusive); see DESIGN.md.
const epochCount = accumulator.FinalEpoch + 2

// recordSize is the on-disk size of a single historical root entry.
const recordSize = 32

//go:embed default_accumulator.bin
var defaultData embed.FS

// Accumulator is the trusted, read-only sequence of historical-epoch
// roots, indexed by epoch. Its zero value is not valid; construct one
// with Load or Default.
type Accumulator struct {
	historicalEpochs [epochCount][32]byte
}

// Load parses a flat binary file of (FinalEpoch+2)*32 bytes -- one 32-byte
// historical root per epoch, in epoch-index order -- into an Accumulator.
// Any decoding error (wrong size, I/O failure) is surfaced as
// ErrInvalidPreMergeAccumulatorFile.
func Load(path string) (*Accumulator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreMergeAccumulatorFile, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreMergeAccumulatorFile, err)
	}
	return decode(data)
}

// Default returns the build-time embedded copy of the historical roots,
// baked in via go:embed the same way genesis allocations are baked in at
// build time rather than fetched at runtime. The embedded file holds
// placeholder roots, not the canonical mainnet values (see DESIGN.md).
func Default() (*Accumulator, error) {
	data, err := defaultData.ReadFile("default_accumulator.bin")
	if err != nil {
		return nil, fmt.Errorf("%w: embedded default unreadable: %v", ErrInvalidPreMergeAccumulatorFile, err)
	}
	return decode(data)
}

// FromRoots constructs an Accumulator directly from a slice of historical
// roots (one per epoch, in epoch-index order), bypassing file I/O. It is
// primarily useful for tests that need to pin a specific epoch's root
// without shipping a binary fixture file.
func FromRoots(roots [][32]byte) (*Accumulator, error) {
	if len(roots) != epochCount {
		return nil, fmt.Errorf("%w: expected %d roots, got %d", ErrInvalidPreMergeAccumulatorFile, epochCount, len(roots))
	}
	acc := &Accumulator{}
	copy(acc.historicalEpochs[:], roots)
	return acc, nil
}

func decode(data []byte) (*Accumulator, error) {
	want := epochCount * recordSize
	if len(data) != want {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPreMergeAccumulatorFile, want, len(data))
	}
	acc := &Accumulator{}
	for e := 0; e < epochCount; e++ {
		copy(acc.historicalEpochs[e][:], data[e*recordSize:(e+1)*recordSize])
	}
	return acc, nil
}

// RootAt returns the 32-byte historical root for epoch, or
// ErrEpochOutOfRange if epoch is outside [0, FinalEpoch+1].
func (a *Accumulator) RootAt(epoch int) ([32]byte, error) {
	if epoch < 0 || epoch >= epochCount {
		return [32]byte{}, fmt.Errorf("%w: epoch %d (max %d)", ErrEpochOutOfRange, epoch, epochCount-1)
	}
	return a.historicalEpochs[epoch], nil
}

// Len returns the logical cardinality of the accumulator (FinalEpoch + 2).
func (a *Accumulator) Len() int { return epochCount }
