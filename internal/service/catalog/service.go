package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/carelink/dispatch-api/internal/model"
	"github.com/carelink/dispatch-api/internal/repository"
)

const (
	cacheTTL        = 5 * time.Minute
	cleanupInterval = 10 * time.Minute
)

// Service serves the read side of the care catalog. Rows are reference
// data and change rarely, so lookups are cached. Pricing inside the
// creation transaction reads the live rows, never this cache.
type Service struct {
	repo  repository.CatalogRepository
	cache *cache.Cache
}

func NewService(repo repository.CatalogRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(cacheTTL, cleanupInterval),
	}
}

func (s *Service) ListServices(ctx context.Context) ([]*model.Service, error) {
	if cached, found := s.cache.Get("services"); found {
		return cached.([]*model.Service), nil
	}

	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault("services", services)
	return services, nil
}

func (s *Service) GetService(ctx context.Context, id int64) (*model.Service, error) {
	key := fmt.Sprintf("service:%d", id)
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.Service), nil
	}

	service, err := s.repo.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, service)
	return service, nil
}

func (s *Service) GetOption(ctx context.Context, id int64) (*model.CareOption, error) {
	key := fmt.Sprintf("option:%d", id)
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.CareOption), nil
	}

	option, err := s.repo.GetOption(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, option)
	return option, nil
}

func (s *Service) ListOptions(ctx context.Context, serviceID int64) ([]*model.CareOption, error) {
	key := fmt.Sprintf("options:%d", serviceID)
	if cached, found := s.cache.Get(key); found {
		return cached.([]*model.CareOption), nil
	}

	options, err := s.repo.ListOptions(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, options)
	return options, nil
}
