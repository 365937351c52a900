package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jefersonOS/barber-pro/internal/model"
	"github.com/jefersonOS/barber-pro/internal/repository"
)

// Catalog rows change rarely and every agent conversation reads them,
// so list reads go through a short-lived in-process cache.
const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

type Service struct {
	services      repository.ServiceRepository
	professionals repository.ProfessionalRepository
	units         repository.UnitRepository
	cache         *cache.Cache
}

func NewService(services repository.ServiceRepository, professionals repository.ProfessionalRepository, units repository.UnitRepository) *Service {
	return &Service{
		services:      services,
		professionals: professionals,
		units:         units,
		cache:         cache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) ListServices(ctx context.Context, orgID uuid.UUID) ([]*model.Service, error) {
	key := fmt.Sprintf("services:%s", orgID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Service), nil
	}
	services, err := s.services.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, services, cache.DefaultExpiration)
	return services, nil
}

func (s *Service) GetService(ctx context.Context, orgID, id uuid.UUID) (*model.Service, error) {
	return s.services.Get(ctx, orgID, id)
}

func (s *Service) ListProfessionals(ctx context.Context, orgID uuid.UUID) ([]*model.Professional, error) {
	key := fmt.Sprintf("professionals:%s", orgID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Professional), nil
	}
	professionals, err := s.professionals.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, professionals, cache.DefaultExpiration)
	return professionals, nil
}

func (s *Service) ListUnits(ctx context.Context, orgID uuid.UUID) ([]*model.Unit, error) {
	key := fmt.Sprintf("units:%s", orgID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Unit), nil
	}
	units, err := s.units.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, units, cache.DefaultExpiration)
	return units, nil
}
