package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextChunks_OverlappingWindows(t *testing.T) {
	content := "AAAAABBBBBCCCCC"
	params := ChunkParams{Size: 10, Overlap: 5, MaxCount: 100}

	chunks, err := NewTextChunks(content, params)
	require.NoError(t, err)

	result := chunks.All()
	require.Len(t, result, 3)
	assert.Equal(t, "AAAAABBBBB", result[0].Content())
	assert.Equal(t, "BBBBBCCCCC", result[1].Content())
	assert.Equal(t, "CCCCC", result[2].Content())
	assert.Equal(t, []int{0, 5, 10}, []int{result[0].Offset(), result[1].Offset(), result[2].Offset()})
}

func TestTextChunks_DocumentScenario(t *testing.T) {
	// 1200 characters with L=500, O=50 chunk at offsets [0,500), [450,950), [900,1200).
	content := strings.Repeat("x", 1200)
	params := ChunkParams{Size: 500, Overlap: 50, MaxCount: 100}

	chunks, err := NewTextChunks(content, params)
	require.NoError(t, err)

	result := chunks.All()
	require.Len(t, result, 3)
	assert.Equal(t, 0, result[0].Offset())
	assert.Len(t, result[0].Content(), 500)
	assert.Equal(t, 450, result[1].Offset())
	assert.Len(t, result[1].Content(), 500)
	assert.Equal(t, 900, result[2].Offset())
	assert.Len(t, result[2].Content(), 300)
}

func TestTextChunks_Deterministic(t *testing.T) {
	content := strings.Repeat("the quick brown fox ", 100)
	params := DefaultChunkParams()

	first, err := NewTextChunks(content, params)
	require.NoError(t, err)
	second, err := NewTextChunks(content, params)
	require.NoError(t, err)

	assert.Equal(t, first.Contents(), second.Contents())
}

func TestTextChunks_CoverageWithoutGaps(t *testing.T) {
	// The non-overlapping regions [0,L-O), [L-O,2(L-O)), ... reconstruct
	// the original text when no truncation occurs.
	content := "abcdefghijklmnopqrstuvwxyz0123456789"
	params := ChunkParams{Size: 10, Overlap: 3, MaxCount: 100}

	chunks, err := NewTextChunks(content, params)
	require.NoError(t, err)

	step := params.Size - params.Overlap
	var rebuilt strings.Builder
	for _, c := range chunks.All() {
		runes := []rune(c.Content())
		end := min(step, len(runes))
		rebuilt.WriteString(string(runes[:end]))
	}
	assert.Equal(t, content, rebuilt.String())
}

func TestTextChunks_MaxCountTruncates(t *testing.T) {
	content := strings.Repeat("z", 1000)
	params := ChunkParams{Size: 10, Overlap: 0, MaxCount: 7}

	chunks, err := NewTextChunks(content, params)
	require.NoError(t, err)
	assert.Equal(t, 7, chunks.Count())
}

func TestTextChunks_EmptyContent(t *testing.T) {
	chunks, err := NewTextChunks("", DefaultChunkParams())
	require.NoError(t, err)
	assert.Empty(t, chunks.All())
}

func TestTextChunks_MultiByteRunes(t *testing.T) {
	content := strings.Repeat("héllo wörld ", 10) // 120 runes
	params := ChunkParams{Size: 50, Overlap: 10, MaxCount: 100}

	chunks, err := NewTextChunks(content, params)
	require.NoError(t, err)

	for _, c := range chunks.All() {
		assert.LessOrEqual(t, len([]rune(c.Content())), 50)
		assert.True(t, strings.ContainsRune(content, []rune(c.Content())[0]))
	}
}

func TestTextChunks_InvalidParams(t *testing.T) {
	_, err := NewTextChunks("text", ChunkParams{Size: 10, Overlap: 10, MaxCount: 5})
	require.Error(t, err)

	_, err = NewTextChunks("text", ChunkParams{Size: 0, Overlap: 0, MaxCount: 5})
	require.Error(t, err)

	_, err = NewTextChunks("text", ChunkParams{Size: 10, Overlap: 0, MaxCount: 0})
	require.Error(t, err)
}
