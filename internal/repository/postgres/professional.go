package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carelink/dispatch-api/internal/model"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
)

const professionalColumns = `
	id, name, phone, email, password_hash, banned, skill,
	latitude, longitude, city, created_at, updated_at
`

func (r *professionalRepository) Create(ctx context.Context, professional *model.Professional) error {
	now := time.Now()
	professional.CreatedAt = now
	professional.UpdatedAt = now

	err := r.db.GetContext(ctx, &professional.ID, `
		INSERT INTO professionals (
			name, phone, email, password_hash, banned, skill,
			latitude, longitude, city, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		professional.Name, professional.Phone, professional.Email,
		professional.PasswordHash, professional.Banned, professional.Skill,
		professional.Latitude, professional.Longitude, professional.City,
		professional.CreatedAt, professional.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create professional: %w", err)
	}
	return nil
}

func (r *professionalRepository) Get(ctx context.Context, id int64) (*model.Professional, error) {
	var professional model.Professional
	err := r.db.GetContext(ctx, &professional, `
		SELECT `+professionalColumns+`
		FROM professionals WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("professional", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}
	return &professional, nil
}

func (r *professionalRepository) ListBySkill(ctx context.Context, skill string) ([]*model.Professional, error) {
	return professionalsBySkill(ctx, r.db, skill)
}

// professionalsBySkill is the candidate matcher's query: exact,
// case-sensitive equality between skill and the requested service name.
// It runs against either the pool or an open transaction so request
// creation can fan out inside its atomic unit.
func professionalsBySkill(ctx context.Context, q sqlx.QueryerContext, skill string) ([]*model.Professional, error) {
	professionals := []*model.Professional{}
	err := sqlx.SelectContext(ctx, q, &professionals, `
		SELECT `+professionalColumns+`
		FROM professionals WHERE skill = $1
	`, skill)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals by skill: %w", err)
	}
	return professionals, nil
}

func (r *professionalRepository) UpdateLocation(ctx context.Context, id int64, latitude, longitude float64, city *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE professionals
		SET latitude = $1, longitude = $2, city = COALESCE($3, city), updated_at = $4
		WHERE id = $5
	`, latitude, longitude, city, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update professional location: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("professional", nil)
	}
	return nil
}
