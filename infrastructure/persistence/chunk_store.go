package persistence

import (
	"context"
	"fmt"

	"github.com/raglet/raglet/domain/document"
	"github.com/raglet/raglet/internal/database"
)

// ChunkStore implements document.ChunkStore using GORM.
type ChunkStore struct {
	db     database.Database
	mapper ChunkMapper
}

// NewChunkStore creates a new ChunkStore.
func NewChunkStore(db database.Database) ChunkStore {
	return ChunkStore{
		db:     db,
		mapper: ChunkMapper{},
	}
}

// SaveAll inserts chunks in order and returns them with assigned IDs.
func (s ChunkStore) SaveAll(ctx context.Context, chunks []document.Chunk) ([]document.Chunk, error) {
	if len(chunks) == 0 {
		return []document.Chunk{}, nil
	}

	models := make([]ChunkModel, len(chunks))
	for i, c := range chunks {
		models[i] = s.mapper.ToModel(c)
	}

	result := s.db.Session(ctx).Create(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("save chunks: %w", result.Error)
	}

	saved := make([]document.Chunk, len(models))
	for i, model := range models {
		saved[i] = s.mapper.ToDomain(model)
	}
	return saved, nil
}

// UpdateIndexPos records the vector index position for a chunk.
func (s ChunkStore) UpdateIndexPos(ctx context.Context, chunkID, pos int64) error {
	result := s.db.Session(ctx).Model(&ChunkModel{}).
		Where("id = ?", chunkID).
		Update("index_pos", pos)
	if result.Error != nil {
		return fmt.Errorf("update chunk index position: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: chunk id %d", database.ErrNotFound, chunkID)
	}
	return nil
}

// GetByIDs retrieves chunks by their storage IDs. Missing IDs are simply
// absent from the result; callers decide how to treat the gap.
func (s ChunkStore) GetByIDs(ctx context.Context, ids []int64) ([]document.Chunk, error) {
	if len(ids) == 0 {
		return []document.Chunk{}, nil
	}

	var models []ChunkModel
	result := s.db.Session(ctx).Where("id IN ?", ids).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("get chunks by ids: %w", result.Error)
	}

	chunks := make([]document.Chunk, len(models))
	for i, model := range models {
		chunks[i] = s.mapper.ToDomain(model)
	}
	return chunks, nil
}

// DeleteByDocument removes all chunks owned by a document.
func (s ChunkStore) DeleteByDocument(ctx context.Context, documentID int64) error {
	result := s.db.Session(ctx).Where("document_id = ?", documentID).Delete(&ChunkModel{})
	if result.Error != nil {
		return fmt.Errorf("delete chunks for document %d: %w", documentID, result.Error)
	}
	return nil
}

// CountByDocument returns the number of chunks owned by a document.
func (s ChunkStore) CountByDocument(ctx context.Context, documentID int64) (int64, error) {
	var count int64
	result := s.db.Session(ctx).Model(&ChunkModel{}).
		Where("document_id = ?", documentID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count chunks for document %d: %w", documentID, result.Error)
	}
	return count, nil
}

var _ document.ChunkStore = ChunkStore{}
