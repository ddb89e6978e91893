// Package validator implements the Epoch Validator (C5): it consumes a
// stream of Extended Header Records, packages them into 8192-record epoch
// windows, computes each epoch's Merkle root (via pkg/accumulator), compares
// it against the trusted Pre-Merge Accumulator, and reports which epochs
// were newly validated.
package validator

import (
	"errors"
	"fmt"

	"github.com/semiotic-ai/header-accumulator/pkg/accumulator"
	"github.com/semiotic-ai/header-accumulator/pkg/log"
	"github.com/semiotic-ai/header-accumulator/pkg/premerge"
	"github.com/semiotic-ai/header-accumulator/pkg/synclock"
)

var logger = log.Module("validator")

// ErrEndEpochLessThanStartEpoch is returned when start_epoch >= end_epoch.
var ErrEndEpochLessThanStartEpoch = errors.New("validator: end_epoch must be greater than start_epoch")

// ErrInvalidEpochLength is returned when fewer than MaxEpochSize records
// remain in the header source to build an epoch.
var ErrInvalidEpochLength = errors.New("validator: fewer than 8192 records available for epoch")

// ErrInvalidEpochStart is returned when the first drained record's block
// number is not a multiple of MaxEpochSize.
var ErrInvalidEpochStart = errors.New("validator: epoch does not start on an 8192 boundary")

// ErrEraAccumulatorMismatch is returned when a freshly computed epoch root
// does not match the trusted pre-merge accumulator's entry for that epoch.
var ErrEraAccumulatorMismatch = errors.New("validator: computed root does not match the pre-merge accumulator")

// Validate drains epochs [startEpoch, endEpoch) from headers, computes and
// checks each epoch's root, and returns the epochs that were newly
// validated during this call. If endEpoch is nil it is treated as
// startEpoch+1. If useLock is true, an already-locked epoch with
// a matching root is skipped (not re-verified, not included in the
// result); lock is both consulted and updated in place, but never
// persisted here -- callers own when to call lock.Persist.
func Validate(
	headers accumulator.HeaderSource,
	pm *premerge.Accumulator,
	lock *synclock.Lock,
	startEpoch int,
	endEpoch *int,
	useLock bool,
) ([]int, error) {
	end := startEpoch + 1
	if endEpoch != nil {
		end = *endEpoch
	}
	if startEpoch >= end {
		return nil, fmt.Errorf("%w: start_epoch=%d end_epoch=%d", ErrEndEpochLessThanStartEpoch, startEpoch, end)
	}

	var validated []int
	for e := startEpoch; e < end; e++ {
		didValidate, err := validateOne(headers, pm, lock, e, useLock)
		if err != nil {
			return nil, err
		}
		if didValidate {
			validated = append(validated, e)
		}
	}
	return validated, nil
}

func validateOne(
	headers accumulator.HeaderSource,
	pm *premerge.Accumulator,
	lock *synclock.Lock,
	epoch int,
	useLock bool,
) (bool, error) {
	epochHeaders := headers.Drain(accumulator.MaxEpochSize)
	if len(epochHeaders) < accumulator.MaxEpochSize {
		return false, fmt.Errorf("%w: epoch %d has %d records", ErrInvalidEpochLength, epoch, len(epochHeaders))
	}

	if epochHeaders[0].BlockNumber%accumulator.MaxEpochSize != 0 {
		return false, fmt.Errorf("%w: epoch %d starts at block %d", ErrInvalidEpochStart, epoch, epochHeaders[0].BlockNumber)
	}

	if epoch > accumulator.FinalEpoch {
		filtered := epochHeaders[:0:0]
		for _, h := range epochHeaders {
			if h.BlockNumber < accumulator.MergeBlock {
				filtered = append(filtered, h)
			}
		}
		dropped := len(epochHeaders) - len(filtered)
		if dropped > 0 {
			logger.Warn("filtered post-merge records from epoch", "epoch", epoch, "dropped", dropped)
		}
		epochHeaders = filtered
	}

	epochAcc := accumulator.NewEpochAccumulator()
	for _, h := range epochHeaders {
		if err := epochAcc.Push(h.ToHeaderRecord()); err != nil {
			return false, fmt.Errorf("validator: building epoch %d: %w", epoch, err)
		}
	}
	root := epochAcc.TreeHashRoot()

	// An already-locked epoch is trusted once written: if its stored root
	// matches what we just recomputed, skip without re-checking the
	// pre-merge accumulator. If it differs, the lock is stale relative to
	// this input and that is fatal, not auto-correctable.
	if useLock && lock != nil {
		locked, err := lock.Check(epoch, root)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrEraAccumulatorMismatch, err)
		}
		if locked {
			return false, nil
		}
	}

	canonical, err := pm.RootAt(epoch)
	if err != nil {
		return false, fmt.Errorf("validator: epoch %d: %w", epoch, err)
	}
	if root != canonical {
		return false, fmt.Errorf("%w: epoch %d", ErrEraAccumulatorMismatch, epoch)
	}

	// The lock only ever tracks pre-merge epochs: the transitional epoch
	// past FinalEpoch validates against the filtered record set above but
	// must never be written, since a later run with a fuller (or emptier)
	// set of post-merge records would recompute a different root for it.
	if useLock && lock != nil && epoch <= accumulator.FinalEpoch {
		lock.Update(epoch, root)
	}

	return true, nil
}
