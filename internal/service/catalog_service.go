package service

import (
	"context"
	"fmt"

	"github.com/Dhoini/licensing-backend/internal/domain"
	"github.com/Dhoini/licensing-backend/internal/repository"
	"github.com/Dhoini/licensing-backend/pkg/logger"
)

// CatalogService exposes the software catalog
type CatalogService interface {
	ListSoftware(ctx context.Context) ([]domain.Software, error)
}

type catalogService struct {
	software repository.SoftwareRepository
	log      *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(software repository.SoftwareRepository, log *logger.Logger) CatalogService {
	return &catalogService{software: software, log: log}
}

func (s *catalogService) ListSoftware(ctx context.Context) ([]domain.Software, error) {
	list, err := s.software.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list software: %w", err)
	}

	return list, nil
}
