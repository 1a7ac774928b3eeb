package provider

import (
	"context"
	"hash/fnv"
)

// FakeEmbedder produces deterministic vectors derived from the input text.
// Identical texts always map to identical vectors, which makes distance
// assertions in tests stable.
type FakeEmbedder struct {
	Dim int
	// Err, when set, is returned by every Embed call.
	Err error
	// Calls counts Embed invocations.
	Calls int
}

// NewFakeEmbedder creates a FakeEmbedder emitting vectors of the given dimension.
func NewFakeEmbedder(dim int) *FakeEmbedder {
	return &FakeEmbedder{Dim: dim}
}

// Embed returns one pseudo-random but deterministic vector per input text.
func (f *FakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = deterministicVector(text, f.Dim)
	}
	return out, nil
}

func deterministicVector(text string, dim int) []float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	vec := make([]float64, dim)
	for i := range vec {
		// xorshift keeps each component dependent on the seed and position.
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		vec[i] = float64(seed%2000)/1000.0 - 1.0
	}
	return vec
}

// FakeGenerator returns a fixed answer for every completion request.
type FakeGenerator struct {
	Answer string
	// Err, when set, is returned by every Complete call.
	Err error
	// LastRequest records the most recent request for assertions.
	LastRequest CompletionRequest
	// Calls counts Complete invocations.
	Calls int
}

// Complete records the request and returns the configured answer.
func (f *FakeGenerator) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.Calls++
	f.LastRequest = req
	if f.Err != nil {
		return "", f.Err
	}
	return f.Answer, nil
}

var (
	_ Embedder      = (*FakeEmbedder)(nil)
	_ TextGenerator = (*FakeGenerator)(nil)
)
