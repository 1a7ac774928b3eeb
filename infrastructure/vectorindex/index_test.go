package vectorindex

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglet/raglet/infrastructure/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIndex(t *testing.T, dim int) (*Index, *provider.FakeEmbedder) {
	t.Helper()
	dir := t.TempDir()
	embedder := provider.NewFakeEmbedder(dim)
	idx := Open(embedder, dim, filepath.Join(dir, "vectors.bin"), filepath.Join(dir, "idmap.bin"), testLogger())
	return idx, embedder
}

func TestIndexAddAssignsSequentialPositions(t *testing.T) {
	idx, _ := testIndex(t, 8)

	positions, err := idx.Add(context.Background(), []string{"one", "two", "three"}, []int64{11, 22, 33})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, positions)
	assert.Equal(t, 3, idx.Count())

	positions, err = idx.Add(context.Background(), []string{"four"}, []int64{44})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, positions, "positions continue where the last batch stopped")
	assert.Equal(t, 4, idx.Count())
}

func TestIndexAddEmptyBatch(t *testing.T) {
	idx, embedder := testIndex(t, 8)

	positions, err := idx.Add(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, positions)
	assert.Zero(t, embedder.Calls)
}

func TestIndexAddBatchMismatch(t *testing.T) {
	idx, _ := testIndex(t, 8)

	_, err := idx.Add(context.Background(), []string{"one", "two"}, []int64{1})
	assert.ErrorIs(t, err, ErrBatchMismatch)
}

func TestIndexAddDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	embedder := provider.NewFakeEmbedder(4)
	idx := Open(embedder, 8, filepath.Join(dir, "vectors.bin"), filepath.Join(dir, "idmap.bin"), testLogger())

	_, err := idx.Add(context.Background(), []string{"one"}, []int64{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Zero(t, idx.Count(), "failed batch leaves the index unchanged")
}

func TestIndexSearchReturnsClosestFirst(t *testing.T) {
	idx, _ := testIndex(t, 16)

	texts := []string{"cats and dogs", "quantum physics", "cooking pasta"}
	_, err := idx.Add(context.Background(), texts, []int64{100, 200, 300})
	require.NoError(t, err)

	// Querying with an ingested text puts that chunk at distance zero.
	results, err := idx.Search(context.Background(), "quantum physics", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(200), results[0].ChunkID)
	assert.Zero(t, results[0].Distance)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
	assert.LessOrEqual(t, results[1].Distance, results[2].Distance)
}

func TestIndexSearchLimitsToK(t *testing.T) {
	idx, _ := testIndex(t, 8)

	_, err := idx.Add(context.Background(),
		[]string{"a", "b", "c", "d", "e"}, []int64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	results, err := idx.Search(context.Background(), "a", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = idx.Search(context.Background(), "a", 50)
	require.NoError(t, err)
	assert.Len(t, results, 5, "k larger than the index returns everything")
}

func TestIndexSearchEmpty(t *testing.T) {
	idx, embedder := testIndex(t, 8)

	results, err := idx.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, embedder.Calls, "empty index must not call the embedder")
}

func TestIndexPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	vectorsPath := filepath.Join(dir, "vectors.bin")
	idMapPath := filepath.Join(dir, "idmap.bin")
	embedder := provider.NewFakeEmbedder(8)

	idx := Open(embedder, 8, vectorsPath, idMapPath, testLogger())
	_, err := idx.Add(context.Background(), []string{"persist me", "and me"}, []int64{7, 8})
	require.NoError(t, err)

	reopened := Open(embedder, 8, vectorsPath, idMapPath, testLogger())
	assert.Equal(t, 2, reopened.Count())

	results, err := reopened.Search(context.Background(), "persist me", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(7), results[0].ChunkID)
	assert.Zero(t, results[0].Distance)
}

func TestIndexOpenCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	vectorsPath := filepath.Join(dir, "vectors.bin")
	idMapPath := filepath.Join(dir, "idmap.bin")
	require.NoError(t, os.WriteFile(vectorsPath, []byte("not a snapshot"), 0o644))
	require.NoError(t, os.WriteFile(idMapPath, []byte("also garbage"), 0o644))

	idx := Open(provider.NewFakeEmbedder(8), 8, vectorsPath, idMapPath, testLogger())
	assert.Zero(t, idx.Count(), "corrupt files start an empty index")

	// The index must be usable after discarding the corrupt pair.
	_, err := idx.Add(context.Background(), []string{"fresh"}, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Count())
}

func TestIndexOpenInconsistentPair(t *testing.T) {
	dir := t.TempDir()
	vectorsPath := filepath.Join(dir, "vectors.bin")
	idMapPath := filepath.Join(dir, "idmap.bin")

	vecSnap := indexSnapshot{Version: snapshotVersion, Dim: 2, Vectors: [][]float64{{1, 2}, {3, 4}}}
	require.NoError(t, writeSnapshot(vectorsPath, &vecSnap))
	mapSnap := idMapSnapshot{Version: snapshotVersion, Positions: map[int64]int64{0: 10}}
	require.NoError(t, writeSnapshot(idMapPath, &mapSnap))

	idx := Open(provider.NewFakeEmbedder(2), 2, vectorsPath, idMapPath, testLogger())
	assert.Zero(t, idx.Count(), "mismatched vector and map counts are discarded")
}

func TestIndexOpenDimensionChange(t *testing.T) {
	dir := t.TempDir()
	vectorsPath := filepath.Join(dir, "vectors.bin")
	idMapPath := filepath.Join(dir, "idmap.bin")

	idx := Open(provider.NewFakeEmbedder(4), 4, vectorsPath, idMapPath, testLogger())
	_, err := idx.Add(context.Background(), []string{"old dim"}, []int64{1})
	require.NoError(t, err)

	reopened := Open(provider.NewFakeEmbedder(8), 8, vectorsPath, idMapPath, testLogger())
	assert.Zero(t, reopened.Count(), "a dimension change starts an empty index")
}

func TestSquaredL2(t *testing.T) {
	assert.Zero(t, squaredL2([]float64{1, 2, 3}, []float64{1, 2, 3}))
	assert.Equal(t, 25.0, squaredL2([]float64{0, 0}, []float64{3, 4}))
}
