package proof

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/semiotic-ai/header-accumulator/pkg/accumulator"
	"github.com/semiotic-ai/header-accumulator/pkg/premerge"
)

func buildEpochZero(t *testing.T) ([]accumulator.ExtendedHeaderRecord, [32]byte) {
	t.Helper()
	records := make([]accumulator.ExtendedHeaderRecord, 0, accumulator.MaxEpochSize)
	acc := accumulator.NewEpochAccumulator()
	for i := 0; i < accumulator.MaxEpochSize; i++ {
		var hash [32]byte
		hash[0] = byte(i)
		hash[1] = byte(i >> 8)
		ext, err := accumulator.NewExtendedHeaderRecord(hash, uint256.NewInt(uint64(i)+1), uint64(i), nil)
		if err != nil {
			t.Fatalf("NewExtendedHeaderRecord: %v", err)
		}
		records = append(records, ext)
		if err := acc.Push(ext.ToHeaderRecord()); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	return records, acc.TreeHashRoot()
}

func premergeWithRoot(t *testing.T, epoch int, root [32]byte) *premerge.Accumulator {
	t.Helper()
	roots := make([][32]byte, accumulator.FinalEpoch+2)
	roots[epoch] = root
	pm, err := premerge.FromRoots(roots)
	if err != nil {
		t.Fatalf("premerge.FromRoots: %v", err)
	}
	return pm
}

func TestGenerateThenVerifySucceeds(t *testing.T) {
	records, root := buildEpochZero(t)
	pm := premergeWithRoot(t, 0, root)

	src := accumulator.NewSliceSource(records)
	proofs, err := Generate(src, 301, 402)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(proofs) != 102 {
		t.Fatalf("len(proofs) = %d, want 102", len(proofs))
	}

	branches := make([]Branch, len(proofs))
	for i, p := range proofs {
		branches[i] = p.Branch
	}
	if err := Verify(proofs, pm, branches); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyFailsOnPermutedBlocks(t *testing.T) {
	records, root := buildEpochZero(t)
	pm := premergeWithRoot(t, 0, root)

	src := accumulator.NewSliceSource(records)
	proofs, err := Generate(src, 301, 402)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	branches := make([]Branch, len(proofs))
	for i, p := range proofs {
		branches[i] = p.Branch
	}

	shifted := make([]HeaderWithProof, len(proofs))
	copy(shifted, proofs)
	shifted[0], shifted[1] = shifted[1], shifted[0]

	if err := Verify(shifted, pm, branches); !errors.Is(err, ErrProofValidationFailure) {
		t.Fatalf("expected ErrProofValidationFailure for permuted blocks, got %v", err)
	}
}

func TestGenerateFailsWhenHeadersDoNotCoverFullEpoch(t *testing.T) {
	records, _ := buildEpochZero(t)
	src := accumulator.NewSliceSource(records[:accumulator.MaxEpochSize-1])
	if _, err := Generate(src, 0, 10); !errors.Is(err, ErrProofGenerationFailure) {
		t.Fatalf("expected ErrProofGenerationFailure, got %v", err)
	}
}

func TestVerifyRejectsBlockAtOrBeyondMerge(t *testing.T) {
	pm, err := premerge.Default()
	if err != nil {
		t.Fatalf("premerge.Default: %v", err)
	}
	block := HeaderWithProof{BlockNumber: accumulator.MergeBlock}
	if err := Verify([]HeaderWithProof{block}, pm, []Branch{{}}); !errors.Is(err, ErrProofValidationFailure) {
		t.Fatalf("expected ErrProofValidationFailure for a post-merge block, got %v", err)
	}
}

func TestVerifyMismatchedLengthsFails(t *testing.T) {
	pm, err := premerge.Default()
	if err != nil {
		t.Fatalf("premerge.Default: %v", err)
	}
	if err := Verify([]HeaderWithProof{{}}, pm, nil); !errors.Is(err, ErrProofValidationFailure) {
		t.Fatalf("expected ErrProofValidationFailure, got %v", err)
	}
}
