package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalysisRecord is the audit row written for every one-shot document analysis.
type AnalysisRecord struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Filename         string         `gorm:"type:varchar(512)" json:"filename"`
	SizeBytes        int64          `json:"size_bytes"`
	Decision         string         `gorm:"type:varchar(16);index" json:"decision"`
	DocumentType     string         `gorm:"type:varchar(255)" json:"document_type,omitempty"`
	Summary          string         `gorm:"type:text" json:"summary,omitempty"`
	ImportantClauses datatypes.JSON `gorm:"type:jsonb" json:"important_clauses,omitempty"`
	Reason           string         `gorm:"type:text" json:"reason,omitempty"`
	DurationMs       int64          `json:"duration_ms"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AnalysisRecord) TableName() string {
	return "analysis_records"
}
