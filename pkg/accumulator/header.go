package accumulator

import (
	"errors"

	"github.com/holiman/uint256"
)

// ErrHeaderDecodeError is returned when an external decoded block is
// missing a field required to build an Extended Header Record: the full
// header or the total difficulty.
var ErrHeaderDecodeError = errors.New("accumulator: header decode error")

// Header carries the subset of an execution-layer block header that the
// inclusion-proof path may need once a branch ties a leaf to an epoch root,
// trimmed to what C4/C7 require.
type Header struct {
	ParentHash  [32]byte
	UnclesHash  [32]byte
	Coinbase    [20]byte
	StateRoot   [32]byte
	TxRoot      [32]byte
	ReceiptRoot [32]byte
	LogsBloom   [256]byte
	Difficulty  *uint256.Int
	Number      uint64
	GasLimit    uint64
	GasUsed     uint64
	Timestamp   uint64
	ExtraData   []byte
	MixHash     [32]byte
	Nonce       [8]byte

	// BaseFeePerGas is present from the London fork onward.
	BaseFeePerGas *uint256.Int
	// WithdrawalsRoot is present from the Shanghai fork onward.
	WithdrawalsRoot *[32]byte
	// BlobGasUsed and ExcessBlobGas are present from the Cancun fork onward.
	BlobGasUsed   *uint64
	ExcessBlobGas *uint64
}

// ExtendedHeaderRecord adapts an externally decoded block into the shape the
// validator and inclusion-proof engine consume (C7). FullHeader is optional:
// epoch validation never inspects it, only inclusion-proof generation does.
type ExtendedHeaderRecord struct {
	BlockHash       [32]byte
	TotalDifficulty *uint256.Int
	BlockNumber     uint64
	FullHeader      *Header
}

// NewExtendedHeaderRecord constructs an Extended Header Record, failing with
// ErrHeaderDecodeError if totalDifficulty is nil.
func NewExtendedHeaderRecord(blockHash [32]byte, totalDifficulty *uint256.Int, blockNumber uint64, header *Header) (ExtendedHeaderRecord, error) {
	if totalDifficulty == nil {
		return ExtendedHeaderRecord{}, ErrHeaderDecodeError
	}
	return ExtendedHeaderRecord{
		BlockHash:       blockHash,
		TotalDifficulty: totalDifficulty,
		BlockNumber:     blockNumber,
		FullHeader:      header,
	}, nil
}

// ToHeaderRecord projects an Extended Header Record down to the compact
// Header Record leaf, dropping everything except block hash and total
// difficulty.
func (e ExtendedHeaderRecord) ToHeaderRecord() HeaderRecord {
	return NewHeaderRecord(e.BlockHash, e.TotalDifficulty)
}
