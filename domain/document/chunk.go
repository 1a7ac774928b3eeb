package document

// Chunk is one contiguous text segment produced from a document.
// IndexPos is the position assigned by the vector index after embedding; it
// is nil until the embedding call returns and, once set, uniquely and
// permanently maps to this chunk. It is the join key between the metadata
// store and the vector index.
type Chunk struct {
	id         int64
	documentID int64
	index      int
	content    string
	indexPos   *int64
}

// NewChunk creates an unembedded chunk (no vector index position yet).
func NewChunk(documentID int64, index int, content string) Chunk {
	return Chunk{
		documentID: documentID,
		index:      index,
		content:    content,
	}
}

// NewChunkWithID reconstructs a Chunk from stored fields (used by persistence).
func NewChunkWithID(id, documentID int64, index int, content string, indexPos *int64) Chunk {
	return Chunk{
		id:         id,
		documentID: documentID,
		index:      index,
		content:    content,
		indexPos:   indexPos,
	}
}

// ID returns the chunk's storage ID.
func (c Chunk) ID() int64 { return c.id }

// DocumentID returns the owning document's ID.
func (c Chunk) DocumentID() int64 { return c.documentID }

// Index returns the zero-based sequence index within the document.
func (c Chunk) Index() int { return c.index }

// Content returns the chunk text.
func (c Chunk) Content() string { return c.content }

// IndexPos returns the vector index position, or nil if not yet embedded.
func (c Chunk) IndexPos() *int64 { return c.indexPos }

// WithIndexPos returns a copy with the vector index position set.
func (c Chunk) WithIndexPos(pos int64) Chunk {
	c.indexPos = &pos
	return c
}
