package professional

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/carelink/dispatch-api/internal/geocoding"
	"github.com/carelink/dispatch-api/internal/model"
	"github.com/carelink/dispatch-api/internal/repository"
)

type Service struct {
	repo     repository.ProfessionalRepository
	geocoder geocoding.Service
	logger   zerolog.Logger
}

func NewService(repo repository.ProfessionalRepository, geocoder geocoding.Service, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		geocoder: geocoder,
		logger:   logger,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Professional, error) {
	return s.repo.Get(ctx, id)
}

// MatchCandidates returns the professionals eligible for a request:
// exact skill equality with the requested service name. An empty result
// is not an error; the request simply never resolves.
func (s *Service) MatchCandidates(ctx context.Context, serviceName string) ([]*model.Professional, error) {
	return s.repo.ListBySkill(ctx, serviceName)
}

// UpdateLocation stores new coordinates and resolves the city through the
// geocoding collaborator. Lookup failures only cost the city name.
func (s *Service) UpdateLocation(ctx context.Context, id int64, latitude, longitude float64) error {
	var city *string
	location, err := s.geocoder.ReverseLookup(ctx, latitude, longitude)
	if err != nil {
		s.logger.Warn().Err(err).Int64("professional_id", id).Msg("reverse geocoding failed")
	} else if location != nil {
		city = &location.CityName
	}

	return s.repo.UpdateLocation(ctx, id, latitude, longitude, city)
}
