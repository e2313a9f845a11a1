package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carelink/dispatch-api/internal/geo"
	"github.com/carelink/dispatch-api/internal/model"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
)

const requestColumns = `
	id, service_id, patient_civility, patient_firstname, patient_lastname,
	patient_birthdate, patient_phone, patient_email, address, latitude,
	longitude, start_date, availability_start, availability_end,
	total_price, status, created_at, updated_at
`

const assignmentColumns = `
	id, request_id, professional_id, status, distance, message,
	created_at, updated_at
`

// CreateRequest persists the request, its line items and documents, the
// patient snapshot, and the full candidate fan-out in one transaction.
// Nothing partially created is observable by readers.
func (r *dispatchRepository) CreateRequest(ctx context.Context, req *model.Request, items []model.LineItemInput, docs []*model.RequestDocument) (*model.Request, error) {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var serviceName string
		err := tx.GetContext(ctx, &serviceName, `SELECT name FROM services WHERE id = $1`, req.ServiceID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("service", err)
		}
		if err != nil {
			return fmt.Errorf("failed to get service: %w", err)
		}

		now := time.Now()
		req.Status = model.RequestStatusPending
		req.CreatedAt = now
		req.UpdatedAt = now

		err = tx.GetContext(ctx, &req.ID, `
			INSERT INTO requests (
				service_id, patient_civility, patient_firstname, patient_lastname,
				patient_birthdate, patient_phone, patient_email, address, latitude,
				longitude, start_date, availability_start, availability_end,
				total_price, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0, $14, $15, $16)
			RETURNING id
		`,
			req.ServiceID, req.PatientCivility, req.PatientFirstname, req.PatientLastname,
			req.PatientBirthdate, req.PatientPhone, req.PatientEmail, req.Address, req.Latitude,
			req.Longitude, req.StartDate, req.AvailabilityStart, req.AvailabilityEnd,
			req.Status, req.CreatedAt, req.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		var totalPrice float64
		for _, item := range items {
			var price float64
			err := tx.GetContext(ctx, &price, `SELECT price FROM care_options WHERE id = $1`, item.OptionID)
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NotFound("care option", err)
			}
			if err != nil {
				return fmt.Errorf("failed to get care option price: %w", err)
			}
			totalPrice += price

			_, err = tx.ExecContext(ctx, `
				INSERT INTO line_items (
					request_id, option_id, answers, recurring,
					recurrence_count, recurrence_period
				) VALUES ($1, $2, $3, $4, $5, $6)
			`, req.ID, item.OptionID, item.Answers, item.Recurring, item.RecurrenceCount, item.RecurrencePeriod)
			if err != nil {
				return fmt.Errorf("failed to create line item: %w", err)
			}
		}

		// Freeze the computed total. Later price changes to the options
		// never touch it.
		if _, err := tx.ExecContext(ctx, `UPDATE requests SET total_price = $1 WHERE id = $2`, totalPrice, req.ID); err != nil {
			return fmt.Errorf("failed to set total price: %w", err)
		}
		req.TotalPrice = totalPrice

		for _, doc := range docs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO request_documents (request_id, file_path, original_name, mime_type, created_at)
				VALUES ($1, $2, $3, $4, $5)
			`, req.ID, doc.FilePath, doc.OriginalName, doc.MimeType, now)
			if err != nil {
				return fmt.Errorf("failed to create request document: %w", err)
			}
		}

		if _, err := upsertPatient(ctx, tx, snapshotFromRequest(req)); err != nil {
			return fmt.Errorf("failed to upsert patient: %w", err)
		}

		// Fan out one pending assignment per matching professional.
		candidates, err := professionalsBySkill(ctx, tx, serviceName)
		if err != nil {
			return fmt.Errorf("failed to match candidates: %w", err)
		}

		message := fmt.Sprintf("New care request for %s", serviceName)
		for _, prof := range candidates {
			distance := geo.Distance(prof.Latitude, prof.Longitude, req.Latitude, req.Longitude)
			_, err := tx.ExecContext(ctx, `
				INSERT INTO assignments (request_id, professional_id, status, distance, message, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, req.ID, prof.ID, model.AssignmentStatusPending, distance, message, now, now)
			if err != nil {
				return fmt.Errorf("failed to create assignment: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// AcceptRequest resolves the race to a single winner. The request row is
// locked before the status check, so concurrent accepts serialize: the
// second caller observes a non-pending status and fails with a conflict.
// The winner/loser flip is one set-based statement issued under that
// lock; a read-then-write loop here would reintroduce the double-winner
// race.
func (r *dispatchRepository) AcceptRequest(ctx context.Context, requestID, professionalID int64) (*model.AcceptOutcome, error) {
	var outcome *model.AcceptOutcome
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		req, serviceName, err := lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if req.Status != model.RequestStatusPending {
			return apperrors.Conflict("request is no longer available", nil)
		}

		var prof model.Professional
		err = tx.GetContext(ctx, &prof, `
			SELECT `+professionalColumns+`
			FROM professionals WHERE id = $1
		`, professionalID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("professional", err)
		}
		if err != nil {
			return fmt.Errorf("failed to get professional: %w", err)
		}

		var assignment model.Assignment
		err = tx.GetContext(ctx, &assignment, `
			SELECT `+assignmentColumns+`
			FROM assignments WHERE request_id = $1 AND professional_id = $2
		`, requestID, professionalID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("assignment", err)
		}
		if err != nil {
			return fmt.Errorf("failed to get assignment: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE assignments
			SET status = CASE WHEN professional_id = $1 THEN 'accepted' ELSE 'denied' END,
			    updated_at = now()
			WHERE request_id = $2
		`, professionalID, requestID)
		if err != nil {
			return fmt.Errorf("failed to resolve assignments: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE requests SET status = $1, updated_at = now() WHERE id = $2
		`, model.RequestStatusAccepted, requestID); err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}

		req.Status = model.RequestStatusAccepted
		assignment.Status = model.AssignmentStatusAccepted
		outcome = &model.AcceptOutcome{
			Request:      req,
			ServiceName:  serviceName,
			Professional: &prof,
			Assignment:   &assignment,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// DenyRequest marks the caller's assignment denied and, when every
// sibling is denied too, transitions a still-pending request to rejected.
// It takes the same request-row lock as accept so two near-simultaneous
// denies cannot both miss the all-denied transition.
func (r *dispatchRepository) DenyRequest(ctx context.Context, requestID, professionalID int64) (*model.DenyOutcome, error) {
	var outcome *model.DenyOutcome
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		req, serviceName, err := lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE assignments SET status = $1, updated_at = now()
			WHERE request_id = $2 AND professional_id = $3
		`, model.AssignmentStatusDenied, requestID, professionalID)
		if err != nil {
			return fmt.Errorf("failed to deny assignment: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("assignment", nil)
		}

		var remaining int
		err = tx.GetContext(ctx, &remaining, `
			SELECT count(*) FROM assignments WHERE request_id = $1 AND status <> $2
		`, requestID, model.AssignmentStatusDenied)
		if err != nil {
			return fmt.Errorf("failed to count assignments: %w", err)
		}

		rejected := false
		if remaining == 0 && req.Status == model.RequestStatusPending {
			if _, err := tx.ExecContext(ctx, `
				UPDATE requests SET status = $1, updated_at = now() WHERE id = $2
			`, model.RequestStatusRejected, requestID); err != nil {
				return fmt.Errorf("failed to reject request: %w", err)
			}
			req.Status = model.RequestStatusRejected
			rejected = true
		}

		outcome = &model.DenyOutcome{
			Request:     req,
			ServiceName: serviceName,
			Rejected:    rejected,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// CompleteRequest moves an accepted request to done. Only the winning
// professional may complete it.
func (r *dispatchRepository) CompleteRequest(ctx context.Context, requestID, professionalID int64) (*model.Request, error) {
	var req *model.Request
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		locked, _, err := lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if locked.Status != model.RequestStatusAccepted {
			return apperrors.Conflict(
				fmt.Sprintf("only accepted requests can be completed, current status: %s", locked.Status), nil)
		}

		var winner int
		err = tx.GetContext(ctx, &winner, `
			SELECT count(*) FROM assignments
			WHERE request_id = $1 AND professional_id = $2 AND status = $3
		`, requestID, professionalID, model.AssignmentStatusAccepted)
		if err != nil {
			return fmt.Errorf("failed to check winning assignment: %w", err)
		}
		if winner == 0 {
			return apperrors.Unauthorized("only the accepted professional can complete this request", nil)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE requests SET status = $1, updated_at = now() WHERE id = $2
		`, model.RequestStatusDone, requestID); err != nil {
			return fmt.Errorf("failed to complete request: %w", err)
		}

		locked.Status = model.RequestStatusDone
		req = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// lockRequest reads the request row FOR UPDATE, holding the exclusive
// lock until the enclosing transaction finishes.
func lockRequest(ctx context.Context, tx *sqlx.Tx, requestID int64) (*model.Request, string, error) {
	var req model.Request
	err := tx.GetContext(ctx, &req, `
		SELECT `+requestColumns+`
		FROM requests WHERE id = $1 FOR UPDATE
	`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", apperrors.NotFound("request", err)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to lock request: %w", err)
	}

	// The service relation is read separately: FOR UPDATE cannot be
	// applied to the nullable side of an outer join.
	var serviceName string
	if err := tx.GetContext(ctx, &serviceName, `SELECT name FROM services WHERE id = $1`, req.ServiceID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("failed to get service: %w", err)
	}

	return &req, serviceName, nil
}

func (r *dispatchRepository) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	var req model.Request
	err := r.GetDB().GetContext(ctx, &req, `
		SELECT `+requestColumns+`
		FROM requests WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &req, nil
}

func (r *dispatchRepository) ListRequests(ctx context.Context) ([]*model.RequestSummary, error) {
	requests := []*model.Request{}
	err := r.GetDB().SelectContext(ctx, &requests, `
		SELECT `+requestColumns+`
		FROM requests ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	summaries := make([]*model.RequestSummary, 0, len(requests))
	for _, req := range requests {
		summary := &model.RequestSummary{
			Request:          req,
			AssignmentStatus: string(model.AssignmentStatusPending),
		}
		if req.Status == model.RequestStatusRejected {
			summary.AssignmentStatus = string(model.RequestStatusRejected)
		}

		var winner struct {
			ID       int64    `db:"id"`
			Name     string   `db:"name"`
			Email    string   `db:"email"`
			Phone    string   `db:"phone"`
			Skill    string   `db:"skill"`
			Distance *float64 `db:"distance"`
		}
		err := r.GetDB().GetContext(ctx, &winner, `
			SELECT p.id, p.name, p.email, p.phone, p.skill, a.distance
			FROM assignments a
			JOIN professionals p ON p.id = a.professional_id
			WHERE a.request_id = $1 AND a.status = $2
		`, req.ID, model.AssignmentStatusAccepted)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get winning assignment: %w", err)
		}
		if err == nil {
			summary.AcceptedProfessional = &model.ProfessionalSummary{
				ID:    winner.ID,
				Name:  winner.Name,
				Email: winner.Email,
				Phone: winner.Phone,
				Skill: winner.Skill,
			}
			summary.Distance = winner.Distance
			summary.AssignmentStatus = string(model.AssignmentStatusAccepted)
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *dispatchRepository) GetLineItems(ctx context.Context, requestID int64) ([]*model.LineItem, error) {
	items := []*model.LineItem{}
	err := r.GetDB().SelectContext(ctx, &items, `
		SELECT id, request_id, option_id, answers, recurring, recurrence_count, recurrence_period
		FROM line_items WHERE request_id = $1 ORDER BY id
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	return items, nil
}

func (r *dispatchRepository) GetDocuments(ctx context.Context, requestID int64) ([]*model.RequestDocument, error) {
	docs := []*model.RequestDocument{}
	err := r.GetDB().SelectContext(ctx, &docs, `
		SELECT id, request_id, file_path, original_name, mime_type, created_at
		FROM request_documents WHERE request_id = $1 ORDER BY id
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list request documents: %w", err)
	}
	return docs, nil
}

func (r *dispatchRepository) GetAssignment(ctx context.Context, requestID, professionalID int64) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.GetDB().GetContext(ctx, &assignment, `
		SELECT `+assignmentColumns+`
		FROM assignments WHERE request_id = $1 AND professional_id = $2
	`, requestID, professionalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("assignment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &assignment, nil
}

func (r *dispatchRepository) ListAssignmentsByProfessional(ctx context.Context, professionalID int64) ([]*model.Assignment, error) {
	assignments := []*model.Assignment{}
	err := r.GetDB().SelectContext(ctx, &assignments, `
		SELECT `+assignmentColumns+`
		FROM assignments WHERE professional_id = $1 ORDER BY created_at DESC
	`, professionalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func snapshotFromRequest(req *model.Request) *model.PatientSnapshot {
	return &model.PatientSnapshot{
		Civility:  req.PatientCivility,
		Firstname: req.PatientFirstname,
		Lastname:  req.PatientLastname,
		Birthdate: req.PatientBirthdate,
		Phone:     req.PatientPhone,
		Email:     req.PatientEmail,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
}
