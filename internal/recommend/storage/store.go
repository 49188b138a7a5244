// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	filePrefix = "model_v"
	fileSuffix = ".gob.gz"
)

// storedFile is the on-disk format for checkpoint files.
type storedFile struct {
	FormatVersion  int
	Metadata       Metadata
	CompressedData []byte
}

// Store manages checkpoint files in one directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a checkpoint store at the given directory.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for checkpoint storage
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// parseFilename extracts the version from "model_v{version}.gob.gz".
func parseFilename(name string) (int, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return 0, false
	}
	v, err := strconv.Atoi(name[len(filePrefix) : len(name)-len(fileSuffix)])
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}

// versions lists stored versions in ascending order.
func (s *Store) versions() ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint directory: %w", err)
	}
	var out []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if v, ok := parseFilename(entry.Name()); ok {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Versions lists stored checkpoint versions in ascending order.
func (s *Store) Versions() ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions()
}

// Latest returns the highest stored version.
func (s *Store) Latest() (int, error) {
	vs, err := s.Versions()
	if err != nil {
		return 0, err
	}
	if len(vs) == 0 {
		return 0, ErrNoCheckpoint
	}
	return vs[len(vs)-1], nil
}

// Save writes cp. A zero Metadata.Version is assigned the next free
// version. The stored metadata is returned.
func (s *Store) Save(ctx context.Context, cp *Checkpoint) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cp.Graph == nil || len(cp.Params) == 0 {
		return nil, ErrIncomplete
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta := cp.Metadata
	if meta.Version == 0 {
		vs, err := s.versions()
		if err != nil {
			return nil, err
		}
		meta.Version = 1
		if len(vs) > 0 {
			meta.Version = vs[len(vs)-1] + 1
		}
	}

	body := *cp
	body.Metadata = Metadata{}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&body); err != nil {
		return nil, fmt.Errorf("encode checkpoint: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])
	meta.FormatVersion = FormatVersion

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return nil, fmt.Errorf("compress checkpoint: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()

	final := s.path(meta.Version)
	tmp, err := os.CreateTemp(s.baseDir, ".checkpoint-*")
	if err != nil {
		return nil, fmt.Errorf("create checkpoint file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() //nolint:errcheck // temp file is gone after a successful rename

	sf := storedFile{FormatVersion: FormatVersion, Metadata: meta, CompressedData: compressed.Bytes()}
	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return nil, fmt.Errorf("write checkpoint file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close checkpoint file: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return nil, fmt.Errorf("publish checkpoint file: %w", err)
	}

	cp.Metadata = meta
	return &meta, nil
}

// readHeader decodes the header and compressed payload of one file.
func (s *Store) readHeader(version int) (*storedFile, error) {
	f, err := os.Open(s.path(version)) //nolint:gosec // path is built from an integer version
	if err != nil {
		return nil, fmt.Errorf("open checkpoint file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read checkpoint file: %w", err)
	}
	if sf.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, sf.FormatVersion)
	}
	return &sf, nil
}

// Load reads a checkpoint by version. Version 0 loads the latest.
func (s *Store) Load(ctx context.Context, version int) (*Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if version == 0 {
		v, err := s.Latest()
		if err != nil {
			return nil, err
		}
		version = v
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sf, err := s.readHeader(version)
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress checkpoint: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, sf.Metadata.Checksum, checksum)
	}

	var cp Checkpoint
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	cp.Metadata = sf.Metadata
	return &cp, nil
}

// Stat returns the metadata of a version without decoding its payload.
func (s *Store) Stat(version int) (*Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sf, err := s.readHeader(version)
	if err != nil {
		return nil, err
	}
	return &sf.Metadata, nil
}

// List returns metadata for all readable checkpoints, oldest first.
func (s *Store) List(ctx context.Context) ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vs, err := s.versions()
	if err != nil {
		return nil, err
	}
	out := make([]Metadata, 0, len(vs))
	for _, v := range vs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sf, err := s.readHeader(v)
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	return out, nil
}

// Delete removes a specific checkpoint version.
func (s *Store) Delete(ctx context.Context, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(version)); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

// Prune removes old checkpoints, keeping only the latest keep versions.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}
	vs, err := s.versions()
	if err != nil {
		return 0, err
	}
	removed := 0
	for i := 0; i < len(vs)-keep; i++ {
		if err := os.Remove(s.path(vs[i])); err == nil {
			removed++
		}
	}
	return removed, nil
}

// path returns the file path for a version.
func (s *Store) path(version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s%d%s", filePrefix, version, fileSuffix))
}
