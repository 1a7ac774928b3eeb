package vectorindex

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

const snapshotVersion = 1

// indexSnapshot is the on-disk form of the vector table.
type indexSnapshot struct {
	Version int
	Dim     int
	Vectors [][]float64
}

// idMapSnapshot is the on-disk form of the position to chunk ID table.
type idMapSnapshot struct {
	Version   int
	Positions map[int64]int64
}

func writeSnapshot(path string, snapshot any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(snapshot); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func readSnapshot(path string, snapshot any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(snapshot); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return nil
}
