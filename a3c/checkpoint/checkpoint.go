// Package checkpoint persists training snapshots as zstd-compressed gob
// files and restores the most recent one on resume.
package checkpoint

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"
)

// SnapshotV1 is the on-disk checkpoint format. Weights is the flat parameter
// vector of the shared store together with the optimizer moments, so resume
// continues Adam exactly where it stopped.
type SnapshotV1 struct {
	Version       int
	MapName       string
	Faction       string
	Seed          int64
	GlobalEpisode int64
	StoreVersion  uint64
	Step          int64

	Weights      []float64
	FirstMoment  []float64
	SecondMoment []float64
}

const formatVersion = 1

// Store writes snapshots under a directory and prunes old ones, keeping the
// most recent Keep files.
type Store struct {
	Dir  string
	Keep int
}

// NewStore creates a snapshot store. The directory is created on first Save.
func NewStore(dir string, keep int) *Store {
	return &Store{Dir: dir, Keep: keep}
}

func (s *Store) pathFor(globalEpisode int64) string {
	return filepath.Join(s.Dir, fmt.Sprintf("model-%09d.ckpt.zst", globalEpisode))
}

// Save writes a snapshot and prunes older files beyond the retention count.
// Returns the written path.
func (s *Store) Save(snap SnapshotV1) (string, error) {
	snap.Version = formatVersion
	path := s.pathFor(snap.GlobalEpisode)
	if err := writeSnapshot(path, snap); err != nil {
		return "", err
	}
	if err := s.prune(); err != nil {
		return "", err
	}
	return path, nil
}

// Latest loads the most recent snapshot, or os.ErrNotExist when the
// directory holds none.
func (s *Store) Latest() (SnapshotV1, error) {
	paths, err := s.List()
	if err != nil {
		return SnapshotV1{}, err
	}
	if len(paths) == 0 {
		return SnapshotV1{}, fmt.Errorf("no snapshots under %s: %w", s.Dir, os.ErrNotExist)
	}
	return readSnapshot(paths[len(paths)-1])
}

// List returns snapshot paths sorted oldest first. A missing directory is an
// empty list, not an error.
func (s *Store) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, "model-*.ckpt.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (s *Store) prune() error {
	paths, err := s.List()
	if err != nil {
		return err
	}
	for len(paths) > s.Keep {
		if err := os.Remove(paths[0]); err != nil {
			return err
		}
		paths = paths[1:]
	}
	return nil
}

func writeSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return err
	}

	// Flush and close errors propagate so Save never prunes after a short write.
	bw := bufio.NewWriterSize(enc, 256*1024)
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
