package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carelink/dispatch-api/internal/filestore"
	"github.com/carelink/dispatch-api/internal/geo"
	"github.com/carelink/dispatch-api/internal/model"
	"github.com/carelink/dispatch-api/internal/repository"
	"github.com/carelink/dispatch-api/internal/service/notification"
	apperrors "github.com/carelink/dispatch-api/pkg/errors"
	"github.com/carelink/dispatch-api/pkg/validator"
)

// MinAvailabilityWindow is the smallest accepted gap between availability
// start and end, in minutes.
const MinAvailabilityWindow = 120

// Service is the dispatch engine. It owns request creation, candidate
// fan-out, and the single-winner resolution lifecycle. All request and
// assignment writes flow through it; side effects run after commit and
// never fail the core transition.
type Service struct {
	repo     repository.DispatchRepository
	catalog  repository.CatalogRepository
	notifier notification.Service
	files    filestore.Store
	metrics  *Metrics
	logger   zerolog.Logger
}

func NewService(
	repo repository.DispatchRepository,
	catalog repository.CatalogRepository,
	notifier notification.Service,
	files filestore.Store,
	metrics *Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		notifier: notifier,
		files:    files,
		metrics:  metrics,
		logger:   logger,
	}
}

// CreateRequest validates the input, persists the request with its line
// items, documents, patient snapshot and candidate assignments in one
// transaction, then notifies matched professionals out-of-band.
func (s *Service) CreateRequest(ctx context.Context, input *model.CreateRequestInput, uploads []model.FileUpload) (*model.Request, error) {
	if err := validator.Struct(input); err != nil {
		return nil, apperrors.Validation("invalid request payload", err)
	}
	if err := s.validateAvailabilityWindow(input.AvailabilityStart, input.AvailabilityEnd); err != nil {
		return nil, err
	}

	svc, err := s.catalog.GetService(ctx, input.ServiceID)
	if err != nil {
		return nil, err
	}

	// Attachment bytes go to the file store up front; a store failure
	// aborts creation before any row is written.
	docs := make([]*model.RequestDocument, 0, len(uploads))
	for _, upload := range uploads {
		path, err := s.files.Store(ctx, upload.Data, upload.ContentType, upload.OriginalName)
		if err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		docs = append(docs, &model.RequestDocument{
			FilePath:     path,
			OriginalName: upload.OriginalName,
			MimeType:     upload.ContentType,
		})
	}

	req := &model.Request{
		ServiceID:         input.ServiceID,
		PatientCivility:   input.PatientCivility,
		PatientFirstname:  input.PatientFirstname,
		PatientLastname:   input.PatientLastname,
		PatientBirthdate:  input.PatientBirthdate,
		PatientPhone:      input.PatientPhone,
		PatientEmail:      input.PatientEmail,
		Address:           input.Address,
		Latitude:          input.Latitude,
		Longitude:         input.Longitude,
		StartDate:         input.StartDate,
		AvailabilityStart: input.AvailabilityStart,
		AvailabilityEnd:   input.AvailabilityEnd,
	}

	created, err := s.repo.CreateRequest(ctx, req, input.Items, docs)
	if err != nil {
		return nil, err
	}
	s.metrics.requestsCreated.Inc()

	// One aggregate notification per request. Gateway failures are
	// logged and swallowed; the transaction is already committed.
	if err := s.notifier.NotifyRequestCreated(ctx, created, svc.Name); err != nil {
		s.logger.Error().Err(err).Int64("request_id", created.ID).Msg("failed to notify professionals")
	}

	return created, nil
}

// Accept resolves the race for a pending request in the caller's favor.
// Exactly one concurrent accept succeeds; the rest fail with a conflict.
func (s *Service) Accept(ctx context.Context, requestID, professionalID int64) (*model.TransitionResult, error) {
	outcome, err := s.repo.AcceptRequest(ctx, requestID, professionalID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindConflict) {
			s.metrics.acceptConflicts.Inc()
		}
		return nil, err
	}
	s.metrics.requestsAccepted.Inc()

	if err := s.notifier.MarkRequestNotificationRead(ctx, requestID); err != nil {
		s.logger.Error().Err(err).Int64("request_id", requestID).Msg("failed to mark notification read")
	}

	if outcome.Request.PatientEmail != "" {
		msg := &model.AcceptanceEmail{
			To:               outcome.Request.PatientEmail,
			PatientName:      patientName(outcome.Request),
			ProfessionalName: outcome.Professional.Name,
			Skill:            outcome.Professional.Skill,
			ServiceName:      outcome.ServiceName,
			Address:          outcome.Request.Address,
			StartDate:        outcome.Request.StartDate,
			Availability:     fmt.Sprintf("%s - %s", outcome.Request.AvailabilityStart, outcome.Request.AvailabilityEnd),
			EstimatedMinutes: geo.EstimatedMinutes(outcome.Assignment.Distance),
			TotalPrice:       outcome.Request.TotalPrice,
		}
		if err := s.notifier.SendAcceptanceEmail(ctx, msg); err != nil {
			s.logger.Error().Err(err).Int64("request_id", requestID).Msg("failed to send acceptance email")
		}
	}

	return &model.TransitionResult{RequestID: requestID, ProfessionalID: professionalID}, nil
}

// Deny marks the caller's assignment denied. The call that denies the
// last pending sibling also rejects the request and mails the patient.
func (s *Service) Deny(ctx context.Context, requestID, professionalID int64) (*model.TransitionResult, error) {
	outcome, err := s.repo.DenyRequest(ctx, requestID, professionalID)
	if err != nil {
		return nil, err
	}

	if outcome.Rejected {
		s.metrics.requestsRejected.Inc()

		if outcome.Request.PatientEmail != "" {
			msg := &model.RejectionEmail{
				To:          outcome.Request.PatientEmail,
				PatientName: patientName(outcome.Request),
				ServiceName: outcome.ServiceName,
				Address:     outcome.Request.Address,
			}
			if err := s.notifier.SendRejectionEmail(ctx, msg); err != nil {
				s.logger.Error().Err(err).Int64("request_id", requestID).Msg("failed to send rejection email")
			}
		}
	}

	return &model.TransitionResult{RequestID: requestID, ProfessionalID: professionalID}, nil
}

// Complete moves an accepted request to done; only the winner may call it.
func (s *Service) Complete(ctx context.Context, requestID, professionalID int64) (*model.CompleteResult, error) {
	req, err := s.repo.CompleteRequest(ctx, requestID, professionalID)
	if err != nil {
		return nil, err
	}
	s.metrics.requestsCompleted.Inc()

	return &model.CompleteResult{RequestID: req.ID, Status: req.Status}, nil
}

func (s *Service) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	return s.repo.GetRequest(ctx, id)
}

func (s *Service) ListRequests(ctx context.Context) ([]*model.RequestSummary, error) {
	return s.repo.ListRequests(ctx)
}

func (s *Service) GetLineItems(ctx context.Context, requestID int64) ([]*model.LineItem, error) {
	return s.repo.GetLineItems(ctx, requestID)
}

func (s *Service) GetDocuments(ctx context.Context, requestID int64) ([]*model.RequestDocument, error) {
	return s.repo.GetDocuments(ctx, requestID)
}

func (s *Service) GetAssignment(ctx context.Context, requestID, professionalID int64) (*model.Assignment, error) {
	return s.repo.GetAssignment(ctx, requestID, professionalID)
}

func (s *Service) ListAssignments(ctx context.Context, professionalID int64) ([]*model.Assignment, error) {
	return s.repo.ListAssignmentsByProfessional(ctx, professionalID)
}

func (s *Service) validateAvailabilityWindow(start, end string) error {
	startMin, err := timeToMinutes(start)
	if err != nil {
		return apperrors.Validation("invalid availability start", err)
	}
	endMin, err := timeToMinutes(end)
	if err != nil {
		return apperrors.Validation("invalid availability end", err)
	}

	if endMin-startMin < MinAvailabilityWindow {
		return apperrors.Validation("availability start and end must be at least 2 hours apart", nil)
	}
	return nil
}

func timeToMinutes(t string) (int, error) {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day: %q", t)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day: %q", t)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day: %q", t)
	}
	return hours*60 + minutes, nil
}

func patientName(req *model.Request) string {
	return fmt.Sprintf("%s %s", req.PatientFirstname, req.PatientLastname)
}
