// Package proof implements the Inclusion-Proof Engine (C4): constructing
// and verifying a 15-sibling Merkle branch tying a single header to its
// epoch's root and, transitively, to the trusted Pre-Merge Accumulator.
package proof

import (
	"errors"
	"fmt"

	"github.com/semiotic-ai/header-accumulator/pkg/accumulator"
	"github.com/semiotic-ai/header-accumulator/pkg/premerge"
)

// ErrProofGenerationFailure is returned when epoch construction fails or
// the requested block interval is not fully covered by the supplied
// headers.
var ErrProofGenerationFailure = errors.New("proof: generation failure")

// ErrProofValidationFailure is returned when a branch does not reconstruct
// the expected historical root.
var ErrProofValidationFailure = errors.New("proof: validation failure")

// Branch is the 15-element Merkle branch tying a single header's leaf to
// its epoch accumulator root.
type Branch = [15][32]byte

// HeaderWithProof binds a single header to the branch proving its
// inclusion in its epoch's accumulator.
type HeaderWithProof struct {
	BlockHash   [32]byte
	BlockNumber uint64
	Branch      Branch
}

// Generate builds inclusion proofs for every block in [startBlock,
// endBlock] (inclusive). headers must span every full epoch touched by the
// interval: it must be drainable in MaxEpochSize chunks from the first
// affected epoch through the last.
func Generate(headers accumulator.HeaderSource, startBlock, endBlock uint64) ([]HeaderWithProof, error) {
	if endBlock < startBlock {
		return nil, fmt.Errorf("%w: end_block %d < start_block %d", ErrProofGenerationFailure, endBlock, startBlock)
	}

	firstEpoch := int(startBlock / accumulator.MaxEpochSize)
	lastEpoch := int(endBlock / accumulator.MaxEpochSize)

	results := make([]HeaderWithProof, 0, endBlock-startBlock+1)

	for epoch := firstEpoch; epoch <= lastEpoch; epoch++ {
		epochHeaders := headers.Drain(accumulator.MaxEpochSize)
		if len(epochHeaders) < accumulator.MaxEpochSize {
			return nil, fmt.Errorf("%w: epoch %d has only %d records", ErrProofGenerationFailure, epoch, len(epochHeaders))
		}

		epochAcc := accumulator.NewEpochAccumulator()
		for _, h := range epochHeaders {
			if err := epochAcc.Push(h.ToHeaderRecord()); err != nil {
				return nil, fmt.Errorf("%w: building epoch %d: %v", ErrProofGenerationFailure, epoch, err)
			}
		}

		epochStart := uint64(epoch) * accumulator.MaxEpochSize
		for i, h := range epochHeaders {
			blockNumber := epochStart + uint64(i)
			if blockNumber < startBlock || blockNumber > endBlock {
				continue
			}
			branch, err := epochAcc.InclusionBranch(i)
			if err != nil {
				return nil, fmt.Errorf("%w: block %d: %v", ErrProofGenerationFailure, blockNumber, err)
			}
			results = append(results, HeaderWithProof{
				BlockHash:   h.BlockHash,
				BlockNumber: blockNumber,
				Branch:      branch,
			})
		}
	}

	if uint64(len(results)) != endBlock-startBlock+1 {
		return nil, fmt.Errorf("%w: produced %d proofs, wanted %d", ErrProofGenerationFailure, len(results), endBlock-startBlock+1)
	}
	return results, nil
}

// Verify checks each entry in proofs against blocks (matched pairwise, in
// order) and the trusted Pre-Merge Accumulator, failing on the first
// mismatch. A proof is bound to its specific block's position: passing
// mismatched blocks fails.
func Verify(blocks []HeaderWithProof, pm *premerge.Accumulator, proofs []Branch) error {
	if len(blocks) != len(proofs) {
		return fmt.Errorf("%w: %d blocks but %d proofs", ErrProofValidationFailure, len(blocks), len(proofs))
	}

	for idx, block := range blocks {
		if block.BlockNumber >= accumulator.MergeBlock {
			return fmt.Errorf("%w: block %d is at or beyond the merge, undefined", ErrProofValidationFailure, block.BlockNumber)
		}

		epoch := int(block.BlockNumber / accumulator.MaxEpochSize)
		leafIndex := int(block.BlockNumber % accumulator.MaxEpochSize)

		canonical, err := pm.RootAt(epoch)
		if err != nil {
			return fmt.Errorf("%w: block %d: %v", ErrProofValidationFailure, block.BlockNumber, err)
		}

		if !accumulator.VerifyInclusionBranch(block.BlockHash, leafIndex, proofs[idx], canonical) {
			return fmt.Errorf("%w: block %d", ErrProofValidationFailure, block.BlockNumber)
		}
	}
	return nil
}
