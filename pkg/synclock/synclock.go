// Package synclock implements the Sync Lock (C6): an on-disk
// epoch-to-validated-root mapping that makes the epoch validator idempotent
// across runs. Persistence uses the same rotate-a-journal idiom as the
// transaction pool's journal: write to a temp file, fsync, then os.Rename
// over the target so a crash mid-write never corrupts the existing lock
// file.
package synclock

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/semiotic-ai/header-accumulator/pkg/log"
)

// ErrEraAccumulatorMismatch is returned by Check when a stored lock entry's
// root disagrees with the expected root: a stale lockfile or a changed
// accumulator.
var ErrEraAccumulatorMismatch = errors.New("synclock: computed root does not match stale lock entry")

// ErrSyncIO wraps an underlying I/O failure while reading or writing the
// lock file.
var ErrSyncIO = errors.New("synclock: I/O error")

var logger = log.Module("synclock")

// lockFile is the on-disk JSON shape: a single "entries" field mapping
// decimal epoch strings to base64-encoded 32-byte roots.
type lockFile struct {
	Entries map[string]string `json:"entries"`
}

// Lock is the in-memory mirror of a sync lock file.
type Lock struct {
	entries map[int][32]byte
}

// NewLock returns an empty lock, as if loaded from a fresh/absent file.
func NewLock() *Lock {
	return &Lock{entries: make(map[int][32]byte)}
}

// Load opens path (creating it if absent; never truncating), parses its
// contents, and returns the resulting Lock. An empty file yields an empty
// lock. A file that fails to parse as valid JSON or whose values do not
// base64-decode to exactly 32 bytes also yields an empty lock, a
// deliberately tolerant read. Any other I/O error is fatal.
func Load(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrSyncIO, path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrSyncIO, path, err)
	}
	if len(raw) == 0 {
		return NewLock(), nil
	}

	lock, ok := parse(raw)
	if !ok {
		logger.Warn("lock file failed to parse, treating as empty", "path", path)
		return NewLock(), nil
	}
	return lock, nil
}

// parse attempts to decode raw lock-file JSON into a Lock. The second
// return value is false if any entry fails to decode cleanly, in which case
// callers should fall back to an empty lock rather than half-apply it.
func parse(raw []byte) (*Lock, bool) {
	var decoded lockFile
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, false
	}
	lock := NewLock()
	for k, v := range decoded.Entries {
		epoch, err := strconv.Atoi(k)
		if err != nil || epoch < 0 {
			return nil, false
		}
		rootBytes, err := base64.StdEncoding.DecodeString(v)
		if err != nil || len(rootBytes) != 32 {
			return nil, false
		}
		var root [32]byte
		copy(root[:], rootBytes)
		lock.entries[epoch] = root
	}
	return lock, true
}

// Check reports whether epoch is already locked with expectedRoot. It
// returns false if the epoch is absent. If present and the stored root
// equals expectedRoot it returns true. If present and differs, it fails
// with ErrEraAccumulatorMismatch.
func (l *Lock) Check(epoch int, expectedRoot [32]byte) (bool, error) {
	root, ok := l.entries[epoch]
	if !ok {
		return false, nil
	}
	if root != expectedRoot {
		return false, fmt.Errorf("%w: epoch %d", ErrEraAccumulatorMismatch, epoch)
	}
	return true, nil
}

// Update inserts or overwrites the in-memory entry for epoch.
func (l *Lock) Update(epoch int, root [32]byte) {
	l.entries[epoch] = root
}

// Len returns the number of locked epochs.
func (l *Lock) Len() int { return len(l.entries) }

// Persist rewrites the entire file atomically from the in-memory map,
// pretty-printed, using the temp-file-then-rename idiom described in the
// package doc so a crash mid-write cannot corrupt the previously persisted
// lock.
func (l *Lock) Persist(path string) error {
	out := lockFile{Entries: make(map[string]string, len(l.entries))}
	for epoch, root := range l.entries {
		out.Entries[strconv.Itoa(epoch)] = base64.StdEncoding.EncodeToString(root[:])
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling lock: %v", ErrSyncIO, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".synclock-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrSyncIO, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: writing temp file: %v", ErrSyncIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: syncing temp file: %v", ErrSyncIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: closing temp file: %v", ErrSyncIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming lock into place: %v", ErrSyncIO, err)
	}

	logger.Info("lock persisted", "path", path, "epochs", len(l.entries))
	return nil
}
