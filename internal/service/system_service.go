package service

import (
	"context"
	"fmt"
	"time"

	"legal-analyzer-be/internal/config"
	"legal-analyzer-be/internal/dto"
)

type ISystemService interface {
	Info() *dto.InfoResponse
	Health(ctx context.Context) *dto.HealthResponse
}

type systemService struct {
	cfg      config.AppConfig
	sessions SessionStore
	now      func() time.Time
}

func NewSystemService(cfg config.AppConfig, sessions SessionStore) ISystemService {
	return &systemService{cfg: cfg, sessions: sessions, now: time.Now}
}

func (s *systemService) Info() *dto.InfoResponse {
	return &dto.InfoResponse{
		Message:     fmt.Sprintf("Welcome to %s", s.cfg.Name),
		Version:     s.cfg.Version,
		Description: "Legal document analyzer",
		Endpoints: map[string]string{
			"analyze":  "/analyze-document",
			"chat":     "/chat",
			"analyses": "/analyses",
			"health":   "/health",
		},
	}
}

// Health stays "healthy" while the process serves requests; a failing
// session store is reported in components only.
func (s *systemService) Health(ctx context.Context) *dto.HealthResponse {
	sessions := map[string]interface{}{"backend": s.sessions.Backend()}
	if n, err := s.sessions.Count(ctx); err != nil {
		sessions["error"] = err.Error()
	} else {
		sessions["count"] = n
	}

	return &dto.HealthResponse{
		Status:     "healthy",
		Service:    s.cfg.Name,
		Version:    s.cfg.Version,
		Timestamp:  s.now().UTC(),
		Components: map[string]interface{}{"session_store": sessions},
	}
}
