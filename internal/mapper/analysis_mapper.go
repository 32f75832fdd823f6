package mapper

import (
	"encoding/json"
	"time"

	"legal-analyzer-be/internal/dto"
	"legal-analyzer-be/internal/model"
	"legal-analyzer-be/pkg/events"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AnalysisMapper struct{}

func NewAnalysisMapper() *AnalysisMapper {
	return &AnalysisMapper{}
}

// ToModel builds the persisted row for an analysis event. A malformed
// analysis id gets a fresh one.
func (m *AnalysisMapper) ToModel(p events.AnalysisPayload, occurredAt time.Time) (*model.AnalysisRecord, error) {
	id, err := uuid.Parse(p.AnalysisID)
	if err != nil {
		id = uuid.New()
	}

	var clauses datatypes.JSON
	if len(p.ImportantClauses) > 0 {
		b, err := json.Marshal(p.ImportantClauses)
		if err != nil {
			return nil, err
		}
		clauses = datatypes.JSON(b)
	}

	return &model.AnalysisRecord{
		Id:               id,
		Filename:         p.Filename,
		SizeBytes:        p.SizeBytes,
		Decision:         p.Decision,
		DocumentType:     p.DocumentType,
		Summary:          p.Summary,
		ImportantClauses: clauses,
		Reason:           p.Reason,
		DurationMs:       p.DurationMs,
		CreatedAt:        occurredAt,
	}, nil
}

func (m *AnalysisMapper) ToResponse(r *model.AnalysisRecord) *dto.AnalysisRecordResponse {
	if r == nil {
		return nil
	}
	var clauses []string
	if len(r.ImportantClauses) > 0 {
		_ = json.Unmarshal(r.ImportantClauses, &clauses)
	}
	size := int64(0)
	if r.SizeBytes > 0 {
		size = r.SizeBytes
	}
	return &dto.AnalysisRecordResponse{
		Id:               r.Id,
		Filename:         r.Filename,
		SizeBytes:        r.SizeBytes,
		Size:             humanize.Bytes(uint64(size)),
		Decision:         r.Decision,
		DocumentType:     r.DocumentType,
		Summary:          r.Summary,
		ImportantClauses: clauses,
		Reason:           r.Reason,
		DurationMs:       r.DurationMs,
		CreatedAt:        r.CreatedAt,
	}
}
