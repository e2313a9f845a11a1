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

func (r *patientRepository) Upsert(ctx context.Context, snapshot *model.PatientSnapshot) (int64, error) {
	return upsertPatient(ctx, r.db, snapshot)
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, `
		SELECT id, civility, firstname, lastname, birthdate, phone, email,
		       address, latitude, longitude, created_at, updated_at
		FROM patients WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

// upsertPatient merges a snapshot into the directory, keyed by phone with
// email as fallback. It runs against either the pool or an open
// transaction so request creation can include it in its atomic unit.
func upsertPatient(ctx context.Context, q sqlx.ExtContext, snapshot *model.PatientSnapshot) (int64, error) {
	var id int64
	var err error

	switch {
	case snapshot.Phone != "":
		err = sqlx.GetContext(ctx, q, &id, `SELECT id FROM patients WHERE phone = $1`, snapshot.Phone)
	case snapshot.Email != "":
		err = sqlx.GetContext(ctx, q, &id, `SELECT id FROM patients WHERE email = $1`, snapshot.Email)
	default:
		err = sql.ErrNoRows
	}

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up patient: %w", err)
	}

	now := time.Now()
	if errors.Is(err, sql.ErrNoRows) {
		err = sqlx.GetContext(ctx, q, &id, `
			INSERT INTO patients (
				civility, firstname, lastname, birthdate, phone, email,
				address, latitude, longitude, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id
		`,
			snapshot.Civility, snapshot.Firstname, snapshot.Lastname, snapshot.Birthdate,
			snapshot.Phone, snapshot.Email, snapshot.Address, snapshot.Latitude,
			snapshot.Longitude, now, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to create patient: %w", err)
		}
		return id, nil
	}

	_, err = q.ExecContext(ctx, `
		UPDATE patients
		SET civility = $1, firstname = $2, lastname = $3, birthdate = $4,
		    phone = $5, email = $6, address = $7, latitude = $8,
		    longitude = $9, updated_at = $10
		WHERE id = $11
	`,
		snapshot.Civility, snapshot.Firstname, snapshot.Lastname, snapshot.Birthdate,
		snapshot.Phone, snapshot.Email, snapshot.Address, snapshot.Latitude,
		snapshot.Longitude, now, id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update patient: %w", err)
	}
	return id, nil
}
