package persistence

import "time"

// DocumentModel represents an ingested URL record in the database.
type DocumentModel struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	URL           string     `gorm:"column:url;uniqueIndex;size:2048;not null"`
	Title         *string    `gorm:"column:title;size:512"`
	Status        string     `gorm:"column:status;index;size:32;not null"`
	ContentLength int        `gorm:"column:content_length;default:0"`
	ChunkCount    int        `gorm:"column:chunk_count;default:0"`
	ErrorMessage  *string    `gorm:"column:error_message;size:1024"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
}

// TableName returns the table name.
func (DocumentModel) TableName() string {
	return "documents"
}

// ChunkModel represents a text chunk in the database.
type ChunkModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	DocumentID int64     `gorm:"column:document_id;index;not null"`
	ChunkIndex int       `gorm:"column:chunk_index;not null"`
	Content    string    `gorm:"column:content;type:text;not null"`
	IndexPos   *int64    `gorm:"column:index_pos;uniqueIndex"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (ChunkModel) TableName() string {
	return "chunks"
}

// JobModel represents a queued ingestion job in the database.
type JobModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

// TableName returns the table name.
func (JobModel) TableName() string {
	return "jobs"
}
