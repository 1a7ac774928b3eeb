package persistence

import (
	"github.com/raglet/raglet/domain/document"
)

// DocumentMapper converts between document.Document and DocumentModel.
type DocumentMapper struct{}

// ToDomain converts a model to a domain document.
func (DocumentMapper) ToDomain(m DocumentModel) document.Document {
	var title, errorMessage string
	if m.Title != nil {
		title = *m.Title
	}
	if m.ErrorMessage != nil {
		errorMessage = *m.ErrorMessage
	}
	return document.NewWithID(
		m.ID,
		m.URL, title,
		document.Status(m.Status),
		m.ContentLength, m.ChunkCount,
		errorMessage,
		m.CreatedAt, m.UpdatedAt,
		m.CompletedAt,
	)
}

// ToModel converts a domain document to a model.
func (DocumentMapper) ToModel(d document.Document) DocumentModel {
	m := DocumentModel{
		ID:            d.ID(),
		URL:           d.URL(),
		Status:        d.Status().String(),
		ContentLength: d.ContentLength(),
		ChunkCount:    d.ChunkCount(),
		CreatedAt:     d.CreatedAt(),
		UpdatedAt:     d.UpdatedAt(),
		CompletedAt:   d.CompletedAt(),
	}
	if title := d.Title(); title != "" {
		m.Title = &title
	}
	if msg := d.ErrorMessage(); msg != "" {
		m.ErrorMessage = &msg
	}
	return m
}

// ChunkMapper converts between document.Chunk and ChunkModel.
type ChunkMapper struct{}

// ToDomain converts a model to a domain chunk.
func (ChunkMapper) ToDomain(m ChunkModel) document.Chunk {
	return document.NewChunkWithID(m.ID, m.DocumentID, m.ChunkIndex, m.Content, m.IndexPos)
}

// ToModel converts a domain chunk to a model.
func (ChunkMapper) ToModel(c document.Chunk) ChunkModel {
	return ChunkModel{
		ID:         c.ID(),
		DocumentID: c.DocumentID(),
		ChunkIndex: c.Index(),
		Content:    c.Content(),
		IndexPos:   c.IndexPos(),
	}
}
