package service

import (
	"context"

	"legal-analyzer-be/internal/dto"
	"legal-analyzer-be/internal/mapper"
	"legal-analyzer-be/internal/repository/contract"
)

const defaultAnalysisLimit = 20

type IAnalysisService interface {
	ListRecent(ctx context.Context, limit int) (*dto.ListAnalysesResponse, error)
}

type analysisService struct {
	analysisRepo contract.AnalysisRepository
	mapper       *mapper.AnalysisMapper
}

// NewAnalysisService lists persisted analyses. Without a repository it
// always answers with an empty list.
func NewAnalysisService(analysisRepo contract.AnalysisRepository) IAnalysisService {
	return &analysisService{
		analysisRepo: analysisRepo,
		mapper:       mapper.NewAnalysisMapper(),
	}
}

func (s *analysisService) ListRecent(ctx context.Context, limit int) (*dto.ListAnalysesResponse, error) {
	res := &dto.ListAnalysesResponse{Items: make([]*dto.AnalysisRecordResponse, 0)}
	if s.analysisRepo == nil {
		return res, nil
	}
	if limit <= 0 {
		limit = defaultAnalysisLimit
	}

	records, err := s.analysisRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.analysisRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	res.Total = total
	for _, r := range records {
		res.Items = append(res.Items, s.mapper.ToResponse(r))
	}
	return res, nil
}
