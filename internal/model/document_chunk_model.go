package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// DocumentChunk is one embedded window of a session document. The vector
// column is untyped so any embedding model dimension fits.
type DocumentChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IndexKey       string          `gorm:"type:varchar(64);not null;index"`
	ChunkIndex     int             `gorm:"not null"`
	Content        string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
