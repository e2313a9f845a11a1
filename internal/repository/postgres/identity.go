package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carelink/dispatch-api/internal/model"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
)

func (r *identityRepository) Create(ctx context.Context, identity *model.Identity) error {
	identity.CreatedAt = time.Now()
	err := r.db.GetContext(ctx, &identity.ID, `
		INSERT INTO identities (role, subject_id, email, password_hash, banned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, identity.Role, identity.SubjectID, identity.Email, identity.PasswordHash, identity.Banned, identity.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

// GetByEmail is the single tagged-union lookup: one query over one table,
// with the role column discriminating admins from professionals. No
// sequential probing of per-role stores.
func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*model.Identity, error) {
	var identity model.Identity
	err := r.db.GetContext(ctx, &identity, `
		SELECT id, role, subject_id, email, password_hash, banned, created_at
		FROM identities WHERE email = $1
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("identity", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}
	return &identity, nil
}
