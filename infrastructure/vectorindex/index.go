// Package vectorindex provides an append-only flat vector index with
// exhaustive squared-L2 search and file-based persistence.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/raglet/raglet/infrastructure/provider"
)

var (
	// ErrDimensionMismatch indicates an embedding whose dimension differs
	// from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrBatchMismatch indicates texts and chunk IDs of different lengths.
	ErrBatchMismatch = errors.New("texts and chunk IDs length mismatch")
)

// Result is a single search hit. Distance is squared L2, so smaller is closer.
type Result struct {
	ChunkID  int64
	Distance float64
}

// Index is a flat in-memory vector index persisted as a snapshot pair: one
// file for the vectors, one for the position to chunk ID map. Positions are
// assigned sequentially and never reused. A single mutex guards all mutation,
// so exactly one writer may grow the index at a time.
type Index struct {
	mu       sync.Mutex
	embedder provider.Embedder
	logger   *slog.Logger

	dim     int
	vectors [][]float64
	idMap   map[int64]int64

	indexPath string
	idMapPath string
}

// Open loads the index from the snapshot pair at the given paths, or starts
// empty when the files are missing or unreadable. A corrupt or inconsistent
// snapshot pair is discarded with a warning rather than failing startup.
func Open(embedder provider.Embedder, dim int, indexPath, idMapPath string, logger *slog.Logger) *Index {
	idx := &Index{
		embedder:  embedder,
		logger:    logger,
		dim:       dim,
		idMap:     make(map[int64]int64),
		indexPath: indexPath,
		idMapPath: idMapPath,
	}
	idx.load()
	return idx
}

func (idx *Index) load() {
	var vecSnap indexSnapshot
	if err := readSnapshot(idx.indexPath, &vecSnap); err != nil {
		if !os.IsNotExist(err) {
			idx.logger.Warn("vector snapshot unreadable, starting empty", "path", idx.indexPath, "error", err)
		}
		return
	}

	var mapSnap idMapSnapshot
	if err := readSnapshot(idx.idMapPath, &mapSnap); err != nil {
		idx.logger.Warn("id map snapshot unreadable, starting empty", "path", idx.idMapPath, "error", err)
		return
	}

	if vecSnap.Dim != idx.dim {
		idx.logger.Warn("vector snapshot dimension differs, starting empty",
			"snapshot_dim", vecSnap.Dim, "configured_dim", idx.dim)
		return
	}
	if len(vecSnap.Vectors) != len(mapSnap.Positions) {
		idx.logger.Warn("snapshot pair inconsistent, starting empty",
			"vectors", len(vecSnap.Vectors), "mapped", len(mapSnap.Positions))
		return
	}

	idx.vectors = vecSnap.Vectors
	idx.idMap = mapSnap.Positions
	if idx.idMap == nil {
		idx.idMap = make(map[int64]int64)
	}
	idx.logger.Info("vector index loaded", "vectors", len(idx.vectors), "dim", idx.dim)
}

// Add embeds the given texts and appends them at the next sequential
// positions, recording each position against the matching chunk ID. The
// snapshot pair is rewritten only after the whole batch is in memory; a
// persistence failure rolls the batch back so memory and disk stay in step.
// Returns the assigned positions in input order.
func (idx *Index) Add(ctx context.Context, texts []string, chunkIDs []int64) ([]int64, error) {
	if len(texts) != len(chunkIDs) {
		return nil, fmt.Errorf("%w: %d texts, %d ids", ErrBatchMismatch, len(texts), len(chunkIDs))
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := idx.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: %d vectors for %d texts", ErrBatchMismatch, len(vectors), len(texts))
	}
	for i, vec := range vectors {
		if len(vec) != idx.dim {
			return nil, fmt.Errorf("%w: vector %d has dim %d, index dim %d", ErrDimensionMismatch, i, len(vec), idx.dim)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	base := int64(len(idx.vectors))
	positions := make([]int64, len(vectors))
	for i, vec := range vectors {
		pos := base + int64(i)
		idx.vectors = append(idx.vectors, vec)
		idx.idMap[pos] = chunkIDs[i]
		positions[i] = pos
	}

	if err := idx.persistLocked(); err != nil {
		idx.vectors = idx.vectors[:base]
		for _, pos := range positions {
			delete(idx.idMap, pos)
		}
		return nil, fmt.Errorf("persist index: %w", err)
	}
	return positions, nil
}

// Search embeds the query and returns up to k chunk IDs ordered by ascending
// squared L2 distance. Positions without a chunk ID mapping are skipped. An
// empty index yields an empty result without calling the embedder.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if idx.Count() == 0 || k <= 0 {
		return nil, nil
	}

	embedded, err := idx.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embedded) != 1 {
		return nil, fmt.Errorf("%w: %d vectors for one query", ErrBatchMismatch, len(embedded))
	}
	queryVec := embedded[0]
	if len(queryVec) != idx.dim {
		return nil, fmt.Errorf("%w: query dim %d, index dim %d", ErrDimensionMismatch, len(queryVec), idx.dim)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	results := make([]Result, 0, len(idx.vectors))
	for pos, vec := range idx.vectors {
		chunkID, ok := idx.idMap[int64(pos)]
		if !ok {
			continue
		}
		results = append(results, Result{ChunkID: chunkID, Distance: squaredL2(queryVec, vec)})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Save rewrites the snapshot pair with the current contents.
func (idx *Index) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.persistLocked()
}

func (idx *Index) persistLocked() error {
	vecSnap := indexSnapshot{Version: snapshotVersion, Dim: idx.dim, Vectors: idx.vectors}
	if err := writeSnapshot(idx.indexPath, &vecSnap); err != nil {
		return err
	}
	mapSnap := idMapSnapshot{Version: snapshotVersion, Positions: idx.idMap}
	return writeSnapshot(idx.idMapPath, &mapSnap)
}

// Count returns the number of stored vectors.
func (idx *Index) Count() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.vectors)
}

// Dim returns the index dimension.
func (idx *Index) Dim() int { return idx.dim }
