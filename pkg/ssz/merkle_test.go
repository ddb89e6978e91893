package ssz

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

func sha256Hash(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// --- Pack tests ---

func TestPackNilReturnsZeroChunk(t *testing.T) {
	chunks := Pack(nil)
	if len(chunks) != 1 {
		t.Fatalf("Pack(nil) should return 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != [32]byte{} {
		t.Error("Pack(nil) chunk should be zero")
	}
}

func TestPackPartialChunk(t *testing.T) {
	data := []byte{0xab, 0xcd}
	chunks := Pack(data)
	if len(chunks) != 1 {
		t.Fatalf("Pack(2 bytes) should return 1 chunk, got %d", len(chunks))
	}
	if chunks[0][0] != 0xab || chunks[0][1] != 0xcd {
		t.Error("data mismatch in partial chunk")
	}
	for i := 2; i < 32; i++ {
		if chunks[0][i] != 0 {
			t.Errorf("byte %d should be zero, got %d", i, chunks[0][i])
		}
	}
}

// --- ceilPow2 tests ---

func TestCeilPow2(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {4, 4},
		{5, 8}, {8191, 8192}, {8192, 8192}, {8193, 16384},
	}
	for _, tt := range tests {
		got := ceilPow2(tt.n)
		if got != tt.want {
			t.Errorf("ceilPow2(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

// --- Merkleize tests ---

func TestMerkleizeSingleChunk(t *testing.T) {
	var chunk [32]byte
	chunk[0] = 0xab
	root := Merkleize([][32]byte{chunk}, 0)
	if root != chunk {
		t.Error("Merkleize of single chunk should return the chunk itself")
	}
}

func TestMerkleizeTwoChunksDetailed(t *testing.T) {
	var a, b [32]byte
	a[0] = 1
	b[0] = 2
	root := Merkleize([][32]byte{a, b}, 0)
	expected := sha256Hash(append(a[:], b[:]...))
	if root != expected {
		t.Fatalf("Merkleize(2 chunks) = %x, want %x", root, expected)
	}
}

func TestMerkleizeFourChunks(t *testing.T) {
	chunks := make([][32]byte, 4)
	for i := range chunks {
		chunks[i][0] = byte(i + 1)
	}
	root := Merkleize(chunks, 0)

	left := sha256Hash(append(chunks[0][:], chunks[1][:]...))
	right := sha256Hash(append(chunks[2][:], chunks[3][:]...))
	expected := sha256Hash(append(left[:], right[:]...))
	if root != expected {
		t.Fatalf("Merkleize(4 chunks) mismatch")
	}
}

func TestMerkleizeWithLimit(t *testing.T) {
	var chunk [32]byte
	chunk[0] = 0xff
	root := Merkleize([][32]byte{chunk}, 4)

	z := [32]byte{}
	left := sha256Hash(append(chunk[:], z[:]...))
	right := sha256Hash(append(z[:], z[:]...))
	expected := sha256Hash(append(left[:], right[:]...))
	if root != expected {
		t.Fatalf("Merkleize with limit=4 mismatch")
	}
}

func TestMerkleizeEmptyChunksIsZeroLeaf(t *testing.T) {
	root := Merkleize(nil, 0)
	if root != [32]byte{} {
		t.Fatalf("Merkleize(nil, 0) should be the zero chunk, got %x", root)
	}
}

// --- MixInLength / LengthChunk tests ---

func TestMixInLengthValue(t *testing.T) {
	var root [32]byte
	root[0] = 0xaa
	result := MixInLength(root, 42)

	var lenChunk [32]byte
	binary.LittleEndian.PutUint64(lenChunk[:8], 42)
	expected := sha256Hash(append(root[:], lenChunk[:]...))
	if result != expected {
		t.Fatalf("MixInLength mismatch")
	}
}

func TestLengthChunkRoundTrips(t *testing.T) {
	chunk := LengthChunk(8192)
	got := binary.LittleEndian.Uint64(chunk[:8])
	if got != 8192 {
		t.Fatalf("LengthChunk encodes %d, want 8192", got)
	}
	for i := 8; i < 32; i++ {
		if chunk[i] != 0 {
			t.Fatalf("LengthChunk byte %d should be zero-padded", i)
		}
	}
}

// --- HashTreeRoot composite type tests ---

func TestHashTreeRootBytes32(t *testing.T) {
	var b [32]byte
	b[0] = 0xab
	b[31] = 0xcd
	root := HashTreeRootBytes32(b)
	if root != b {
		t.Error("hash_tree_root(bytes32) should return the value itself")
	}
}

func TestHashTreeRootContainerTwoFields(t *testing.T) {
	var rootA, rootB [32]byte
	rootA[0] = 1
	rootB[0] = 2
	containerRoot := HashTreeRootContainer([][32]byte{rootA, rootB})
	expected := sha256Hash(append(rootA[:], rootB[:]...))
	if containerRoot != expected {
		t.Error("container hash tree root mismatch")
	}
}

func TestHashTreeRootListWithLength(t *testing.T) {
	var rootA, rootB [32]byte
	rootA[0] = 10
	rootB[0] = 20
	listRoot := HashTreeRootList([][32]byte{rootA, rootB}, 4)

	merkleRoot := Merkleize([][32]byte{rootA, rootB}, 4)
	expected := MixInLength(merkleRoot, 2)
	if listRoot != expected {
		t.Error("list hash tree root mismatch")
	}
}

// --- MerkleizeTree / MerkleBranch / VerifyBranch round-trip ---

func TestMerkleBranchRoundTrip(t *testing.T) {
	const n = 16
	chunks := make([][32]byte, n)
	for i := range chunks {
		chunks[i][0] = byte(i + 1)
	}
	tree := MerkleizeTree(chunks, n)
	root := tree[len(tree)-1][0]

	for i := 0; i < n; i++ {
		branch := MerkleBranch(tree, i)
		if len(branch) != 4 { // log2(16)
			t.Fatalf("branch length = %d, want 4", len(branch))
		}
		got := VerifyBranch(chunks[i], i, branch)
		if got != root {
			t.Fatalf("leaf %d: branch did not reconstruct root", i)
		}
	}
}

func TestMerkleBranchDetectsWrongIndex(t *testing.T) {
	const n = 8
	chunks := make([][32]byte, n)
	for i := range chunks {
		chunks[i][0] = byte(i + 1)
	}
	tree := MerkleizeTree(chunks, n)
	root := tree[len(tree)-1][0]

	branch := MerkleBranch(tree, 2)
	if VerifyBranch(chunks[3], 3, branch) == root {
		t.Fatal("branch for index 2 should not verify leaf 3 at index 3")
	}
}

func TestMerkleizeTreePartialFill(t *testing.T) {
	chunks := make([][32]byte, 3)
	for i := range chunks {
		chunks[i][0] = byte(i + 1)
	}
	tree := MerkleizeTree(chunks, 8)
	if len(tree[0]) != 8 {
		t.Fatalf("leaf layer should be padded to 8, got %d", len(tree[0]))
	}
	for i := 3; i < 8; i++ {
		if tree[0][i] != [32]byte{} {
			t.Fatalf("padding leaf %d should be zero", i)
		}
	}
}
