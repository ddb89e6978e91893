// Package accumulator implements the epoch-accumulator data model: the
// Header Record leaf (C1), the fixed-capacity Epoch Accumulator (C2) and
// its Merkle tree-hash root, the Extended Header Record adapter (C7), and
// the inclusion-branch construction used by the inclusion-proof engine.
package accumulator

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/semiotic-ai/header-accumulator/pkg/ssz"
)

// Domain-fixed constants.
const (
	// MaxEpochSize is the fixed capacity of an Epoch Accumulator.
	MaxEpochSize = 8192
	// FinalEpoch is the last pre-merge epoch; it contains MergeBlock
	// (FinalEpoch*MaxEpochSize <= MergeBlock < (FinalEpoch+1)*MaxEpochSize).
	FinalEpoch = 1896
	// MergeBlock is the first post-merge block number.
	MergeBlock = 15_537_394
)

// epochTreeDepth is log2(MaxEpochSize); the number of internal Merkle
// levels an Epoch Accumulator's record list spans.
const epochTreeDepth = 13

// ErrTooManyHeaderRecords is returned by Push when the accumulator is
// already at MaxEpochSize capacity.
var ErrTooManyHeaderRecords = errors.New("accumulator: too many header records")

// HeaderRecord is the compact (block_hash, total_difficulty) pair that is
// the SSZ leaf of an Epoch Accumulator (C1).
type HeaderRecord struct {
	BlockHash       [32]byte
	TotalDifficulty *uint256.Int
}

// NewHeaderRecord constructs a HeaderRecord. The result is immutable: callers
// must not mutate the returned TotalDifficulty afterwards.
func NewHeaderRecord(blockHash [32]byte, totalDifficulty *uint256.Int) HeaderRecord {
	return HeaderRecord{BlockHash: blockHash, TotalDifficulty: totalDifficulty}
}

// totalDifficultyChunk serializes TotalDifficulty as a little-endian 32-byte
// chunk.
func (r HeaderRecord) totalDifficultyChunk() [32]byte {
	var chunk [32]byte
	if r.TotalDifficulty == nil {
		return chunk
	}
	be := r.TotalDifficulty.Bytes32()
	for i := 0; i < 32; i++ {
		chunk[i] = be[31-i]
	}
	return chunk
}

// TreeHashRoot computes the SSZ tree-hash of the two-field container
// (32-byte block hash vector, 256-bit little-endian total difficulty).
func (r HeaderRecord) TreeHashRoot() [32]byte {
	blockHashRoot := ssz.HashTreeRootBytes32(r.BlockHash)
	tdRoot := ssz.HashTreeRootBytes32(r.totalDifficultyChunk())
	return ssz.HashTreeRootContainer([][32]byte{blockHashRoot, tdRoot})
}

// EpochAccumulator is an ordered, bounded (capacity MaxEpochSize) list of
// Header Records (C2).
type EpochAccumulator struct {
	records []HeaderRecord
}

// NewEpochAccumulator returns an empty Epoch Accumulator.
func NewEpochAccumulator() *EpochAccumulator {
	return &EpochAccumulator{records: make([]HeaderRecord, 0, MaxEpochSize)}
}

// Push appends a Header Record, failing with ErrTooManyHeaderRecords once
// the accumulator holds MaxEpochSize records.
func (e *EpochAccumulator) Push(r HeaderRecord) error {
	if len(e.records) >= MaxEpochSize {
		return ErrTooManyHeaderRecords
	}
	e.records = append(e.records, r)
	return nil
}

// Len returns the number of records currently held.
func (e *EpochAccumulator) Len() int { return len(e.records) }

// Records returns the underlying records in insertion order. The returned
// slice must not be mutated by callers.
func (e *EpochAccumulator) Records() []HeaderRecord { return e.records }

// tree builds the full padded (to MaxEpochSize) binary Merkle tree over the
// per-record leaf hashes, every layer retained so sibling hashes for any
// index can be pulled without recomputing.
func (e *EpochAccumulator) tree() [][][32]byte {
	leaves := make([][32]byte, len(e.records))
	for i, r := range e.records {
		leaves[i] = r.TreeHashRoot()
	}
	return ssz.MerkleizeTree(leaves, MaxEpochSize)
}

// TreeHashRoot returns the 32-byte SSZ Merkle root of the list variable,
// including the length mix-in, so that a partially-filled epoch (the
// final, post-merge one) still yields a well-defined root.
func (e *EpochAccumulator) TreeHashRoot() [32]byte {
	tree := e.tree()
	dataRoot := tree[len(tree)-1][0]
	return ssz.MixInLength(dataRoot, uint64(len(e.records)))
}

// InclusionBranch returns the 15-element Merkle branch tying the record at
// index i to the accumulator's tree-hash root: one sibling completing the
// Header Record's own two-field container (the total difficulty chunk),
// the 13 internal siblings of the depth-13 record list, and one sibling
// for the length mix-in.
func (e *EpochAccumulator) InclusionBranch(i int) ([15][32]byte, error) {
	var branch [15][32]byte
	if i < 0 || i >= len(e.records) {
		return branch, fmt.Errorf("accumulator: record index %d out of range (len=%d)", i, len(e.records))
	}

	branch[0] = e.records[i].totalDifficultyChunk()

	tree := e.tree()
	internal := ssz.MerkleBranch(tree, i)
	if len(internal) != epochTreeDepth {
		return branch, fmt.Errorf("accumulator: expected %d internal siblings, got %d", epochTreeDepth, len(internal))
	}
	copy(branch[1:1+epochTreeDepth], internal)

	branch[14] = ssz.LengthChunk(uint64(len(e.records)))
	return branch, nil
}

// VerifyInclusionBranch reconstructs a root from a block hash, its leaf
// index within an epoch accumulator, and a 15-element branch as produced
// by InclusionBranch, and reports whether it equals expectedRoot. The
// record's total difficulty and the epoch's record count are not needed
// separately: both are already committed into branch[0] (the container
// sibling) and branch[14] (the length sibling) respectively.
func VerifyInclusionBranch(blockHash [32]byte, index int, branch [15][32]byte, expectedRoot [32]byte) bool {
	node := ssz.VerifyBranch(blockHash, 0, [][32]byte{branch[0]})
	node = ssz.VerifyBranch(node, index, branch[1:1+epochTreeDepth])
	node = ssz.VerifyBranch(node, 0, [][32]byte{branch[14]})
	return node == expectedRoot
}
