// Package store implements the on-disk persistence format from spec.md
// §4.9: a little-endian uint32 header length, a JSON header carrying a
// format version and artefact kind, and a payload, written atomically via
// a temp file plus rename. The teacher's codebase has no binary
// persistence layer of its own (see DESIGN.md for why encoding/gob
// substitutes for the original's bincode payload encoding), so this
// package is grounded on the original implementation's store/mod.rs
// layout rather than any one teacher file.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codelens-dev/codelens/internal/bm25"
	"github.com/codelens-dev/codelens/internal/errs"
	"github.com/codelens-dev/codelens/internal/types"
)

// CurrentVersion is the only format version this package writes or
// accepts, per spec.md §4.9.
const CurrentVersion = 1

// Kind distinguishes the two artefact files this package persists.
type Kind string

const (
	KindElements Kind = "elements"
	KindBM25     Kind = "bm25"
)

type header struct {
	Version int  `json:"version"`
	Kind     Kind `json:"kind"`
}

// SaveElements atomically writes elements to path.
func SaveElements(path string, elements []types.Element) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(elements); err != nil {
		return errs.NewStoreError("save", path, err)
	}
	return writeAtomic(path, KindElements, buf.Bytes())
}

// LoadElements reads and validates an elements artefact written by
// SaveElements. A version mismatch is reported as a StoreError marked
// Recoverable so the caller falls back to a full reindex, per spec.md §7.
func LoadElements(path string) ([]types.Element, error) {
	payload, err := readValidated(path, KindElements)
	if err != nil {
		return nil, err
	}
	var elements []types.Element
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&elements); err != nil {
		return nil, errs.NewStoreError("load", path, err)
	}
	return elements, nil
}

// SaveBM25 atomically writes idx's documents to path.
func SaveBM25(path string, idx *bm25.Index) error {
	snap := idx.Snapshot()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return errs.NewStoreError("save", path, err)
	}
	return writeAtomic(path, KindBM25, buf.Bytes())
}

// LoadBM25 reads a bm25 artefact and rebuilds an in-memory Index from it.
func LoadBM25(path string) (*bm25.Index, error) {
	payload, err := readValidated(path, KindBM25)
	if err != nil {
		return nil, err
	}
	var snap bm25.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&snap); err != nil {
		return nil, errs.NewStoreError("load", path, err)
	}
	idx := bm25.New()
	idx.Stem = snap.Stem
	for id, tokens := range snap.Docs {
		idx.AddTokenizedDocument(id, tokens)
	}
	return idx, nil
}

func writeAtomic(path string, kind Kind, payload []byte) error {
	h := header{Version: CurrentVersion, Kind: kind}
	headerBytes, err := json.Marshal(h)
	if err != nil {
		return errs.NewStoreError("save", path, err)
	}

	var out bytes.Buffer
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(headerBytes)))
	out.Write(lenBuf[:])
	out.Write(headerBytes)
	out.Write(payload)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".store-*.tmp")
	if err != nil {
		return errs.NewStoreError("save", path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(out.Bytes()); err != nil {
		tmp.Close()
		return errs.NewStoreError("save", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errs.NewStoreError("save", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errs.NewStoreError("save", path, err)
	}
	return nil
}

func readValidated(path string, wantKind Kind) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewStoreError("load", path, err)
	}
	if len(raw) < 4 {
		return nil, errs.NewStoreError("load", path, fmt.Errorf("truncated header")).WithRecoverable(true)
	}
	headerLen := binary.LittleEndian.Uint32(raw[:4])
	if uint32(len(raw)) < 4+headerLen {
		return nil, errs.NewStoreError("load", path, fmt.Errorf("truncated header payload")).WithRecoverable(true)
	}
	var h header
	if err := json.Unmarshal(raw[4:4+headerLen], &h); err != nil {
		return nil, errs.NewStoreError("load", path, err).WithRecoverable(true)
	}
	if h.Version != CurrentVersion {
		return nil, errs.NewStoreError("load", path,
			fmt.Errorf("store version mismatch: got %d, want %d", h.Version, CurrentVersion)).WithRecoverable(true)
	}
	if h.Kind != wantKind {
		return nil, errs.NewStoreError("load", path,
			fmt.Errorf("store kind mismatch: got %s, want %s", h.Kind, wantKind)).WithRecoverable(true)
	}
	return raw[4+headerLen:], nil
}
