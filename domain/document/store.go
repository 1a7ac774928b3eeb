package document

import "context"

// Store persists documents.
type Store interface {
	// Save inserts or updates a document and returns the stored copy.
	Save(ctx context.Context, doc Document) (Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id int64) (Document, error)

	// GetByURL retrieves a document by its unique URL.
	GetByURL(ctx context.Context, url string) (Document, error)

	// List returns documents ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]Document, error)

	// Count returns the total number of documents.
	Count(ctx context.Context) (int64, error)
}

// ChunkStore persists chunks.
type ChunkStore interface {
	// SaveAll inserts chunks in order and returns them with assigned IDs.
	SaveAll(ctx context.Context, chunks []Chunk) ([]Chunk, error)

	// UpdateIndexPos records the vector index position for a chunk.
	UpdateIndexPos(ctx context.Context, chunkID, pos int64) error

	// GetByIDs retrieves chunks by their storage IDs.
	GetByIDs(ctx context.Context, ids []int64) ([]Chunk, error)

	// DeleteByDocument removes all chunks owned by a document.
	DeleteByDocument(ctx context.Context, documentID int64) error

	// CountByDocument returns the number of chunks owned by a document.
	CountByDocument(ctx context.Context, documentID int64) (int64, error)
}
