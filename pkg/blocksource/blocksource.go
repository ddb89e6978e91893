// Package blocksource is the external collaborator adapter: it decodes a
// directory of flat JSON files (one per block) into Extended Header
// Records. It is a minimal, concrete stand-in for the real upstream block
// decoder (era/e2s files, RLP blocks), which is out of scope here.
package blocksource

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/semiotic-ai/header-accumulator/pkg/accumulator"
)

// decodedHeader mirrors the JSON shape of a decoded block's header fields.
type decodedHeader struct {
	ParentHash      string  `json:"parent_hash"`
	UnclesHash      string  `json:"uncles_hash"`
	Coinbase        string  `json:"coinbase"`
	StateRoot       string  `json:"state_root"`
	TransactionRoot string  `json:"transactions_root"`
	ReceiptsRoot    string  `json:"receipts_root"`
	LogsBloom       string  `json:"logs_bloom"`
	Difficulty      string  `json:"difficulty"`
	Number          string  `json:"number"`
	GasLimit        string  `json:"gas_limit"`
	GasUsed         string  `json:"gas_used"`
	Timestamp       string  `json:"timestamp"`
	ExtraData       string  `json:"extra_data"`
	MixHash         string  `json:"mix_hash"`
	Nonce           string  `json:"nonce"`
	BaseFeePerGas   *string `json:"base_fee_per_gas,omitempty"`
	WithdrawalsRoot *string `json:"withdrawals_root,omitempty"`
	BlobGasUsed     *string `json:"blob_gas_used,omitempty"`
	ExcessBlobGas   *string `json:"excess_blob_gas,omitempty"`
}

// decodedBlock mirrors the JSON shape of one external decoder record.
type decodedBlock struct {
	Hash            string         `json:"hash"`
	TotalDifficulty string         `json:"total_difficulty"`
	Header          *decodedHeader `json:"header"`
}

// DecodeDirectory reads one JSON file per block (named "<number>.json") from
// dir, sorted by block number, and decodes each into an Extended Header
// Record. A block missing its header or total_difficulty field fails with
// accumulator.ErrHeaderDecodeError.
func DecodeDirectory(dir string) ([]accumulator.ExtendedHeaderRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("blocksource: reading %s: %w", dir, err)
	}

	type numberedFile struct {
		number int64
		name   string
	}
	files := make([]numberedFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		numStr := strings.TrimSuffix(name, ".json")
		num, err := strconv.ParseInt(numStr, 10, 64)
		if err != nil {
			continue
		}
		files = append(files, numberedFile{number: num, name: name})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].number < files[j].number })

	records := make([]accumulator.ExtendedHeaderRecord, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return nil, fmt.Errorf("blocksource: reading %s: %w", f.name, err)
		}

		var block decodedBlock
		if err := json.Unmarshal(data, &block); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", accumulator.ErrHeaderDecodeError, f.name, err)
		}

		record, err := decode(block)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", accumulator.ErrHeaderDecodeError, f.name, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func decode(block decodedBlock) (accumulator.ExtendedHeaderRecord, error) {
	if block.Header == nil {
		return accumulator.ExtendedHeaderRecord{}, accumulator.ErrHeaderDecodeError
	}
	if block.TotalDifficulty == "" {
		return accumulator.ExtendedHeaderRecord{}, accumulator.ErrHeaderDecodeError
	}

	hash, err := hexToHash(block.Hash)
	if err != nil {
		return accumulator.ExtendedHeaderRecord{}, fmt.Errorf("hash: %w", err)
	}
	td, err := hexToUint256(block.TotalDifficulty)
	if err != nil {
		return accumulator.ExtendedHeaderRecord{}, fmt.Errorf("total_difficulty: %w", err)
	}

	header, err := decodeHeader(block.Header)
	if err != nil {
		return accumulator.ExtendedHeaderRecord{}, err
	}

	return accumulator.NewExtendedHeaderRecord(hash, td, header.Number, header)
}

func decodeHeader(h *decodedHeader) (*accumulator.Header, error) {
	parentHash, err := hexToHash(h.ParentHash)
	if err != nil {
		return nil, fmt.Errorf("parent_hash: %w", err)
	}
	unclesHash, err := hexToHash(h.UnclesHash)
	if err != nil {
		return nil, fmt.Errorf("uncles_hash: %w", err)
	}
	coinbase, err := hexToAddress(h.Coinbase)
	if err != nil {
		return nil, fmt.Errorf("coinbase: %w", err)
	}
	stateRoot, err := hexToHash(h.StateRoot)
	if err != nil {
		return nil, fmt.Errorf("state_root: %w", err)
	}
	txRoot, err := hexToHash(h.TransactionRoot)
	if err != nil {
		return nil, fmt.Errorf("transactions_root: %w", err)
	}
	receiptRoot, err := hexToHash(h.ReceiptsRoot)
	if err != nil {
		return nil, fmt.Errorf("receipts_root: %w", err)
	}
	bloom, err := hexToBloom(h.LogsBloom)
	if err != nil {
		return nil, fmt.Errorf("logs_bloom: %w", err)
	}
	difficulty, err := hexToUint256(h.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("difficulty: %w", err)
	}
	number, err := hexToUint64(h.Number)
	if err != nil {
		return nil, fmt.Errorf("number: %w", err)
	}
	gasLimit, err := hexToUint64(h.GasLimit)
	if err != nil {
		return nil, fmt.Errorf("gas_limit: %w", err)
	}
	gasUsed, err := hexToUint64(h.GasUsed)
	if err != nil {
		return nil, fmt.Errorf("gas_used: %w", err)
	}
	timestamp, err := hexToUint64(h.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("timestamp: %w", err)
	}
	extraData, err := hexToBytes(h.ExtraData)
	if err != nil {
		return nil, fmt.Errorf("extra_data: %w", err)
	}
	mixHash, err := hexToHash(h.MixHash)
	if err != nil {
		return nil, fmt.Errorf("mix_hash: %w", err)
	}
	nonce, err := hexToNonce(h.Nonce)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	header := &accumulator.Header{
		ParentHash:  parentHash,
		UnclesHash:  unclesHash,
		Coinbase:    coinbase,
		StateRoot:   stateRoot,
		TxRoot:      txRoot,
		ReceiptRoot: receiptRoot,
		LogsBloom:   bloom,
		Difficulty:  difficulty,
		Number:      number,
		GasLimit:    gasLimit,
		GasUsed:     gasUsed,
		Timestamp:   timestamp,
		ExtraData:   extraData,
		MixHash:     mixHash,
		Nonce:       nonce,
	}

	if h.BaseFeePerGas != nil {
		baseFee, err := hexToUint256(*h.BaseFeePerGas)
		if err != nil {
			return nil, fmt.Errorf("base_fee_per_gas: %w", err)
		}
		header.BaseFeePerGas = baseFee
	}
	if h.WithdrawalsRoot != nil {
		root, err := hexToHash(*h.WithdrawalsRoot)
		if err != nil {
			return nil, fmt.Errorf("withdrawals_root: %w", err)
		}
		header.WithdrawalsRoot = &root
	}
	if h.BlobGasUsed != nil {
		v, err := hexToUint64(*h.BlobGasUsed)
		if err != nil {
			return nil, fmt.Errorf("blob_gas_used: %w", err)
		}
		header.BlobGasUsed = &v
	}
	if h.ExcessBlobGas != nil {
		v, err := hexToUint64(*h.ExcessBlobGas)
		if err != nil {
			return nil, fmt.Errorf("excess_blob_gas: %w", err)
		}
		header.ExcessBlobGas = &v
	}

	return header, nil
}

func stripHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

func hexToBytes(s string) ([]byte, error) {
	s = stripHexPrefix(s)
	if len(s)%2 != 0 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

func hexToHash(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hexToBytes(s)
	if err != nil {
		return out, err
	}
	if len(b) > 32 {
		return out, fmt.Errorf("value too long for a 32-byte hash")
	}
	copy(out[32-len(b):], b)
	return out, nil
}

func hexToAddress(s string) ([20]byte, error) {
	var out [20]byte
	b, err := hexToBytes(s)
	if err != nil {
		return out, err
	}
	if len(b) > 20 {
		return out, fmt.Errorf("value too long for a 20-byte address")
	}
	copy(out[20-len(b):], b)
	return out, nil
}

func hexToBloom(s string) ([256]byte, error) {
	var out [256]byte
	b, err := hexToBytes(s)
	if err != nil {
		return out, err
	}
	if len(b) > 256 {
		return out, fmt.Errorf("value too long for a 256-byte bloom filter")
	}
	copy(out[256-len(b):], b)
	return out, nil
}

func hexToNonce(s string) ([8]byte, error) {
	var out [8]byte
	b, err := hexToBytes(s)
	if err != nil {
		return out, err
	}
	if len(b) > 8 {
		return out, fmt.Errorf("value too long for an 8-byte nonce")
	}
	copy(out[8-len(b):], b)
	return out, nil
}

func hexToUint64(s string) (uint64, error) {
	s = stripHexPrefix(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 16, 64)
}

func hexToUint256(s string) (*uint256.Int, error) {
	s = stripHexPrefix(s)
	if s == "" {
		return uint256.NewInt(0), nil
	}
	v, err := uint256.FromHex("0x" + s)
	if err != nil {
		return nil, err
	}
	return v, nil
}
