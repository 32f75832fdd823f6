package implementation

import (
	"context"
	"errors"

	"legal-analyzer-be/internal/model"
	"legal-analyzer-be/internal/repository/contract"
	"legal-analyzer-be/internal/repository/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalysisRepositoryImpl struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) contract.AnalysisRepository {
	return &AnalysisRepositoryImpl{db: db}
}

func (r *AnalysisRepositoryImpl) Create(ctx context.Context, record *model.AnalysisRecord) error {
	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *AnalysisRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.AnalysisRecord, error) {
	var m model.AnalysisRecord
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *AnalysisRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*model.AnalysisRecord, error) {
	var records []*model.AnalysisRecord
	err := r.db.WithContext(ctx).
		Scopes(scope.OrderByCreatedDesc, scope.Limit(limit, 20)).
		Find(&records).Error
	return records, err
}

func (r *AnalysisRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AnalysisRecord{}).Count(&count).Error
	return count, err
}
