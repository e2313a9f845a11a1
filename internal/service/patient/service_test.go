package patient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/dispatch-api/internal/model"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
)

type fakeRepo struct {
	upserted []*model.PatientSnapshot
}

func (f *fakeRepo) Upsert(_ context.Context, snapshot *model.PatientSnapshot) (int64, error) {
	f.upserted = append(f.upserted, snapshot)
	return int64(len(f.upserted)), nil
}

func (f *fakeRepo) Get(context.Context, int64) (*model.Patient, error) { return nil, nil }

func TestUpsert(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	id, err := svc.Upsert(context.Background(), &model.PatientSnapshot{
		Firstname: "Jane",
		Lastname:  "Doe",
		Phone:     "+33600000001",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Len(t, repo.upserted, 1)
}

func TestUpsertWithoutContact(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.Upsert(context.Background(), &model.PatientSnapshot{
		Firstname: "Jane",
		Lastname:  "Doe",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Empty(t, repo.upserted)
}
