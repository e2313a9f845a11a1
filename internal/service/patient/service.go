package patient

import (
	"context"

	"github.com/carelink/dispatch-api/internal/model"
	"github.com/carelink/dispatch-api/internal/repository"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
)

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

// Upsert merges a snapshot into the directory, keyed by phone with email
// as fallback. Calling it twice with the same contact is a no-op beyond
// refreshing the stored fields.
func (s *Service) Upsert(ctx context.Context, snapshot *model.PatientSnapshot) (int64, error) {
	if snapshot.Phone == "" && snapshot.Email == "" {
		return 0, apperrors.Validation("patient snapshot requires a phone or email", nil)
	}
	return s.repo.Upsert(ctx, snapshot)
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}
