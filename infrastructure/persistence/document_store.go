package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/raglet/raglet/domain/document"
	"github.com/raglet/raglet/internal/database"
)

// DocumentStore implements document.Store using GORM.
type DocumentStore struct {
	db     database.Database
	mapper DocumentMapper
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db database.Database) DocumentStore {
	return DocumentStore{
		db:     db,
		mapper: DocumentMapper{},
	}
}

// Save creates a new document or updates an existing one.
func (s DocumentStore) Save(ctx context.Context, doc document.Document) (document.Document, error) {
	model := s.mapper.ToModel(doc)

	result := s.db.Session(ctx).Save(&model)
	if result.Error != nil {
		return document.Document{}, fmt.Errorf("save document: %w", result.Error)
	}
	return s.reload(ctx, model.ID)
}

// Get retrieves a document by ID.
func (s DocumentStore) Get(ctx context.Context, id int64) (document.Document, error) {
	var model DocumentModel
	result := s.db.Session(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return document.Document{}, fmt.Errorf("%w: document id %d", database.ErrNotFound, id)
		}
		return document.Document{}, fmt.Errorf("get document: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// GetByURL retrieves a document by its unique URL.
func (s DocumentStore) GetByURL(ctx context.Context, url string) (document.Document, error) {
	var model DocumentModel
	result := s.db.Session(ctx).Where("url = ?", url).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return document.Document{}, fmt.Errorf("%w: document url %s", database.ErrNotFound, url)
		}
		return document.Document{}, fmt.Errorf("get document by url: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// List returns documents ordered by creation time, newest first.
func (s DocumentStore) List(ctx context.Context, limit, offset int) ([]document.Document, error) {
	var models []DocumentModel
	db := s.db.Session(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	result := db.Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("list documents: %w", result.Error)
	}

	docs := make([]document.Document, len(models))
	for i, model := range models {
		docs[i] = s.mapper.ToDomain(model)
	}
	return docs, nil
}

// Count returns the total number of documents.
func (s DocumentStore) Count(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.Session(ctx).Model(&DocumentModel{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count documents: %w", result.Error)
	}
	return count, nil
}

// reload fetches the stored row so GORM-managed timestamps come back.
func (s DocumentStore) reload(ctx context.Context, id int64) (document.Document, error) {
	var model DocumentModel
	result := s.db.Session(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		return document.Document{}, fmt.Errorf("reload document: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

var _ document.Store = DocumentStore{}
