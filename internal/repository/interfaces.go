package repository

import (
	"context"

	"github.com/carelink/dispatch-api/internal/model"
)

// All repository interfaces in one file
type (
	// DispatchRepository owns every write to requests and assignments.
	// Each transition method runs as one transaction; the accept and
	// complete paths hold an exclusive lock on the request row for the
	// transaction's lifetime.
	DispatchRepository interface {
		CreateRequest(ctx context.Context, req *model.Request, items []model.LineItemInput, docs []*model.RequestDocument) (*model.Request, error)
		AcceptRequest(ctx context.Context, requestID, professionalID int64) (*model.AcceptOutcome, error)
		DenyRequest(ctx context.Context, requestID, professionalID int64) (*model.DenyOutcome, error)
		CompleteRequest(ctx context.Context, requestID, professionalID int64) (*model.Request, error)
		GetRequest(ctx context.Context, id int64) (*model.Request, error)
		ListRequests(ctx context.Context) ([]*model.RequestSummary, error)
		GetLineItems(ctx context.Context, requestID int64) ([]*model.LineItem, error)
		GetDocuments(ctx context.Context, requestID int64) ([]*model.RequestDocument, error)
		GetAssignment(ctx context.Context, requestID, professionalID int64) (*model.Assignment, error)
		ListAssignmentsByProfessional(ctx context.Context, professionalID int64) ([]*model.Assignment, error)
	}

	ProfessionalRepository interface {
		Create(ctx context.Context, professional *model.Professional) error
		Get(ctx context.Context, id int64) (*model.Professional, error)
		ListBySkill(ctx context.Context, skill string) ([]*model.Professional, error)
		UpdateLocation(ctx context.Context, id int64, latitude, longitude float64, city *string) error
	}

	// PatientRepository merges snapshots by phone, falling back to email.
	PatientRepository interface {
		Upsert(ctx context.Context, snapshot *model.PatientSnapshot) (int64, error)
		Get(ctx context.Context, id int64) (*model.Patient, error)
	}

	CatalogRepository interface {
		ListServices(ctx context.Context) ([]*model.Service, error)
		GetService(ctx context.Context, id int64) (*model.Service, error)
		GetOption(ctx context.Context, id int64) (*model.CareOption, error)
		ListOptions(ctx context.Context, serviceID int64) ([]*model.CareOption, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		List(ctx context.Context) ([]*model.Notification, error)
		ListUnread(ctx context.Context) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id int64) error
		LatestByReference(ctx context.Context, referenceID int64) (*model.Notification, error)
	}

	IdentityRepository interface {
		Create(ctx context.Context, identity *model.Identity) error
		GetByEmail(ctx context.Context, email string) (*model.Identity, error)
	}
)
