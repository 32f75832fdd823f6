package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListAnalysesRequest struct {
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

type AnalysisRecordResponse struct {
	Id               uuid.UUID `json:"id"`
	Filename         string    `json:"filename"`
	SizeBytes        int64     `json:"size_bytes"`
	Size             string    `json:"size"`
	Decision         string    `json:"decision"`
	DocumentType     string    `json:"document_type,omitempty"`
	Summary          string    `json:"summary,omitempty"`
	ImportantClauses []string  `json:"important_clauses,omitempty"`
	Reason           string    `json:"reason,omitempty"`
	DurationMs       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

type ListAnalysesResponse struct {
	Total int64                     `json:"total"`
	Items []*AnalysisRecordResponse `json:"items"`
}
