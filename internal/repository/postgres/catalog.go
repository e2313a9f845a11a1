package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carelink/dispatch-api/internal/model"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
)

func (r *catalogRepository) ListServices(ctx context.Context) ([]*model.Service, error) {
	services := []*model.Service{}
	err := r.db.SelectContext(ctx, &services, `
		SELECT id, name, description, created_at FROM services ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *catalogRepository) GetService(ctx context.Context, id int64) (*model.Service, error) {
	var service model.Service
	err := r.db.GetContext(ctx, &service, `
		SELECT id, name, description, created_at FROM services WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("service", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

func (r *catalogRepository) GetOption(ctx context.Context, id int64) (*model.CareOption, error) {
	var option model.CareOption
	err := r.db.GetContext(ctx, &option, `
		SELECT id, service_id, name, description, price, created_at
		FROM care_options WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("care option", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get care option: %w", err)
	}
	return &option, nil
}

func (r *catalogRepository) ListOptions(ctx context.Context, serviceID int64) ([]*model.CareOption, error) {
	options := []*model.CareOption{}
	err := r.db.SelectContext(ctx, &options, `
		SELECT id, service_id, name, description, price, created_at
		FROM care_options WHERE service_id = $1 ORDER BY name
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list care options: %w", err)
	}
	return options, nil
}
