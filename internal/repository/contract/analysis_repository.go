package contract

import (
	"context"

	"legal-analyzer-be/internal/model"

	"github.com/google/uuid"
)

type AnalysisRepository interface {
	Create(ctx context.Context, record *model.AnalysisRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AnalysisRecord, error)
	FindRecent(ctx context.Context, limit int) ([]*model.AnalysisRecord, error)
	Count(ctx context.Context) (int64, error)
}
