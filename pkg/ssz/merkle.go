// Package ssz implements the subset of Simple Serialize (SSZ) Merkleization
// needed to compute and prove historical-epoch accumulator roots: packing
// basic values into 32-byte chunks, building the binary SHA-256 Merkle tree
// over those chunks, and mixing in a length for variable-size list types.
//
// Spec: https://github.com/ethereum/consensus-specs/blob/dev/ssz/simple-serialize.md
package ssz

import (
	"crypto/sha256"
	"encoding/binary"
	"math/bits"
)

// BytesPerChunk is the number of bytes in each leaf chunk for Merkleization.
const BytesPerChunk = 32

// combine hashes two sibling chunks together with SHA-256, the single
// operation the whole Merkle tree is built out of.
func combine(left, right [32]byte) [32]byte {
	h := sha256.New()
	h.Write(left[:])
	h.Write(right[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// zeroSubtrees returns the hash of an all-zero subtree at each level 0..depth:
// level 0 is the zero chunk itself, and each subsequent level is that level's
// zero hash combined with itself. Used to pad a partially-filled leaf layer
// without materializing the padding chunks.
func zeroSubtrees(depth int) [][32]byte {
	levels := make([][32]byte, depth+1)
	for d := 1; d <= depth; d++ {
		levels[d] = combine(levels[d-1], levels[d-1])
	}
	return levels
}

// ceilPow2 rounds n up to the nearest power of two (ceilPow2(0) == 1).
func ceilPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Pack splits a serialized SSZ value into 32-byte chunks, right-padding the
// final chunk with zero bytes when its length isn't a multiple of
// BytesPerChunk. An empty input packs to a single zero chunk.
func Pack(serialized []byte) [][32]byte {
	if len(serialized) == 0 {
		return [][32]byte{{}}
	}
	chunkCount := (len(serialized) + BytesPerChunk - 1) / BytesPerChunk
	chunks := make([][32]byte, chunkCount)
	for i := range chunks {
		lo := i * BytesPerChunk
		hi := lo + BytesPerChunk
		if hi > len(serialized) {
			hi = len(serialized)
		}
		copy(chunks[i][:], serialized[lo:hi])
	}
	return chunks
}

// MerkleizeTree computes every layer of the binary Merkle tree over chunks,
// padded to the given limit (rounded up to the next power of two). Layer 0
// is the padded leaves, the last layer is a single-element slice holding the
// root. Retaining every layer -- rather than only the final root -- is what
// lets the inclusion-proof engine extract sibling hashes for an arbitrary
// leaf index without recomputing the tree.
func MerkleizeTree(chunks [][32]byte, limit int) [][][32]byte {
	count := len(chunks)
	if limit == 0 || limit < count {
		limit = ceilPow2(count)
	}
	limit = ceilPow2(limit)

	if count == 0 {
		chunks = [][32]byte{{}}
		count = 1
	}

	depth := bits.Len(uint(limit - 1))
	padding := zeroSubtrees(depth)

	leaves := make([][32]byte, limit)
	copy(leaves, chunks)
	for i := count; i < limit; i++ {
		leaves[i] = padding[0]
	}

	layers := make([][][32]byte, depth+1)
	layers[0] = leaves

	for d := 0; d < depth; d++ {
		prev := layers[d]
		next := make([][32]byte, len(prev)/2)
		for i := range next {
			next[i] = combine(prev[2*i], prev[2*i+1])
		}
		layers[d+1] = next
	}

	return layers
}

// Merkleize reduces a chunk list straight to its 32-byte root, discarding
// the intermediate layers MerkleizeTree keeps. A limit of 0 pads to the
// chunk count's own power-of-two ceiling rather than a fixed list capacity.
func Merkleize(chunks [][32]byte, limit int) [32]byte {
	layers := MerkleizeTree(chunks, limit)
	return layers[len(layers)-1][0]
}

// MerkleBranch returns the sibling hash at each level of tree needed to
// prove inclusion of the leaf at index. len(result) == len(tree)-1.
func MerkleBranch(tree [][][32]byte, index int) [][32]byte {
	branch := make([][32]byte, len(tree)-1)
	for d := 0; d < len(tree)-1; d++ {
		siblingIndex := index ^ 1
		branch[d] = tree[d][siblingIndex]
		index >>= 1
	}
	return branch
}

// VerifyBranch reconstructs a root from a leaf, its generalized index
// position, and its Merkle branch (siblings ordered bottom-up).
func VerifyBranch(leaf [32]byte, index int, branch [][32]byte) [32]byte {
	node := leaf
	for _, sibling := range branch {
		if index&1 == 0 {
			node = combine(node, sibling)
		} else {
			node = combine(sibling, node)
		}
		index >>= 1
	}
	return node
}

// LengthChunk serializes a length value into the 32-byte chunk used by
// MixInLength, exposed so callers that need to carry it as a standalone
// proof element (see the inclusion-proof engine) don't have to duplicate
// the little-endian encoding.
func LengthChunk(length uint64) [32]byte {
	var chunk [32]byte
	binary.LittleEndian.PutUint64(chunk[:8], length)
	return chunk
}

// MixInLength mixes a Merkle root with a length value, used for
// variable-size types (lists, bitlists, byte lists).
func MixInLength(root [32]byte, length uint64) [32]byte {
	return combine(root, LengthChunk(length))
}

// --- Hash tree root functions for basic types ---

// HashTreeRootBytes32 computes the hash tree root of a 32-byte fixed vector.
// Since it already fits in one chunk, it is its own root.
func HashTreeRootBytes32(b [32]byte) [32]byte {
	return b
}

// HashTreeRootContainer computes the hash tree root of a container.
// Each field is provided as its 32-byte hash tree root.
func HashTreeRootContainer(fieldRoots [][32]byte) [32]byte {
	return Merkleize(fieldRoots, 0)
}

// HashTreeRootList computes the hash tree root of a list with the given
// max length. Each element is provided as its 32-byte hash tree root.
func HashTreeRootList(elementRoots [][32]byte, maxLen int) [32]byte {
	root := Merkleize(elementRoots, ceilPow2(maxLen))
	return MixInLength(root, uint64(len(elementRoots)))
}
