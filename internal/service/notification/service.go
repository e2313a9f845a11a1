package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carelink/dispatch-api/internal/email"
	"github.com/carelink/dispatch-api/internal/model"
	"github.com/carelink/dispatch-api/internal/repository"
	"github.com/carelink/dispatch-api/pkg/messaging"
)

// Professionals subscribe per skill; one aggregate event per request goes
// to the channel of the requested service.
const channelPrefix = "dispatch:speciality:"

// Channel returns the realtime channel name for a service.
func Channel(serviceName string) string {
	return channelPrefix + serviceName
}

// Service is the side-effect gateway: persisted + realtime notification
// and patient-facing email. Callers treat every method as fire-and-forget
// and swallow failures.
type Service interface {
	NotifyRequestCreated(ctx context.Context, req *model.Request, serviceName string) error
	MarkRequestNotificationRead(ctx context.Context, requestID int64) error
	SendAcceptanceEmail(ctx context.Context, msg *model.AcceptanceEmail) error
	SendRejectionEmail(ctx context.Context, msg *model.RejectionEmail) error
	List(ctx context.Context) ([]*model.Notification, error)
	ListUnread(ctx context.Context) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

type service struct {
	repo     repository.NotificationRepository
	emailSvc email.Service
	broker   messaging.Broker
	logger   zerolog.Logger
}

func NewService(repo repository.NotificationRepository, emailSvc email.Service, broker messaging.Broker, logger zerolog.Logger) Service {
	return &service{
		repo:     repo,
		emailSvc: emailSvc,
		broker:   broker,
		logger:   logger,
	}
}

func (s *service) NotifyRequestCreated(ctx context.Context, req *model.Request, serviceName string) error {
	message := fmt.Sprintf("New care request for %s", serviceName)

	notification := &model.Notification{
		Type:        serviceName,
		ReferenceID: req.ID,
		Message:     message,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	event := &model.DispatchEvent{
		ID:          uuid.New(),
		Type:        serviceName,
		ReferenceID: req.ID,
		PatientName: fmt.Sprintf("%s %s", req.PatientFirstname, req.PatientLastname),
		Address:     req.Address,
		Message:     message,
		CreatedAt:   time.Now(),
	}
	if err := s.broker.Publish(ctx, Channel(serviceName), messaging.Message{
		Type:    "newBookingRequest",
		Payload: event,
	}); err != nil {
		return fmt.Errorf("failed to publish dispatch event: %w", err)
	}

	return nil
}

func (s *service) MarkRequestNotificationRead(ctx context.Context, requestID int64) error {
	notification, err := s.repo.LatestByReference(ctx, requestID)
	if err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, notification.ID)
}

func (s *service) SendAcceptanceEmail(ctx context.Context, msg *model.AcceptanceEmail) error {
	subject := "Your care request has been accepted - CareLink"
	content := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Good news: %s (%s) has accepted your %s request at %s.</p>
		<p>Scheduled for %s, availability %s.</p>
		<p>Estimated arrival: about %d minutes after the start of your window.</p>
		<p>Total: %.2f</p>
	`,
		msg.PatientName, msg.ProfessionalName, msg.Skill, msg.ServiceName, msg.Address,
		msg.StartDate.Format("Monday, 2 January 2006"), msg.Availability,
		msg.EstimatedMinutes, msg.TotalPrice,
	)
	return s.emailSvc.SendCustom(ctx, msg.To, subject, content)
}

func (s *service) SendRejectionEmail(ctx context.Context, msg *model.RejectionEmail) error {
	subject := "An update on your care request - CareLink"
	content := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Unfortunately no professional is currently available for your %s request at %s.</p>
		<p>Please submit a new request with a different time window.</p>
	`, msg.PatientName, msg.ServiceName, msg.Address)
	return s.emailSvc.SendCustom(ctx, msg.To, subject, content)
}

func (s *service) List(ctx context.Context) ([]*model.Notification, error) {
	return s.repo.List(ctx)
}

func (s *service) ListUnread(ctx context.Context) ([]*model.Notification, error) {
	return s.repo.ListUnread(ctx)
}

func (s *service) MarkRead(ctx context.Context, id int64) error {
	return s.repo.MarkRead(ctx, id)
}
