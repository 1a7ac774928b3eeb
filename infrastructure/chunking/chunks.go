// Package chunking provides fixed-size text chunking with overlap for RAG indexing.
package chunking

import (
	"fmt"
)

// ChunkParams configures the chunking algorithm. Size and Overlap are
// measured in runes so multi-byte text never splits mid-code-point.
type ChunkParams struct {
	Size     int
	Overlap  int
	MaxCount int
}

// DefaultChunkParams returns the defaults used for web page text.
func DefaultChunkParams() ChunkParams {
	return ChunkParams{
		Size:     500,
		Overlap:  50,
		MaxCount: 100,
	}
}

// Validate checks the parameter constraints.
func (p ChunkParams) Validate() error {
	if p.Size <= 0 {
		return fmt.Errorf("size (%d) must be positive", p.Size)
	}
	if p.Overlap < 0 || p.Overlap >= p.Size {
		return fmt.Errorf("overlap (%d) must be in [0, size=%d)", p.Overlap, p.Size)
	}
	if p.MaxCount <= 0 {
		return fmt.Errorf("max count (%d) must be positive", p.MaxCount)
	}
	return nil
}

// Chunk is a single text segment with its rune offset in the original content.
type Chunk struct {
	content string
	offset  int
}

// Content returns the chunk text.
func (c Chunk) Content() string { return c.content }

// Offset returns the rune offset of this chunk in the original content.
func (c Chunk) Offset() int { return c.offset }

// TextChunks holds the result of splitting content into fixed-size chunks.
type TextChunks struct {
	chunks []Chunk
}

// NewTextChunks splits content into overlapping fixed-size windows.
//
// Chunk i starts at rune offset i*(Size-Overlap) and covers up to Size runes,
// clipped to the end of the content. Generation stops when the next start
// reaches the end of the content or MaxCount chunks have been produced.
// Empty content yields no chunks. The algorithm is deterministic and
// stateless: identical input always yields an identical chunk sequence.
func NewTextChunks(content string, params ChunkParams) (TextChunks, error) {
	if err := params.Validate(); err != nil {
		return TextChunks{}, err
	}

	runes := []rune(content)
	step := params.Size - params.Overlap

	var chunks []Chunk
	for start := 0; start < len(runes) && len(chunks) < params.MaxCount; start += step {
		end := min(start+params.Size, len(runes))
		chunks = append(chunks, Chunk{
			content: string(runes[start:end]),
			offset:  start,
		})
	}

	return TextChunks{chunks: chunks}, nil
}

// All returns all chunks in order.
func (t TextChunks) All() []Chunk { return t.chunks }

// Count returns the number of chunks.
func (t TextChunks) Count() int { return len(t.chunks) }

// Contents returns just the chunk texts, in order.
func (t TextChunks) Contents() []string {
	out := make([]string, len(t.chunks))
	for i, c := range t.chunks {
		out[i] = c.content
	}
	return out
}
