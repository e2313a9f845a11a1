package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/carelink/dispatch-api/internal/repository"
)

type dispatchRepository struct {
	BaseRepository
}

type professionalRepository struct {
	db *sqlx.DB
}

type patientRepository struct {
	db *sqlx.DB
}

type catalogRepository struct {
	db *sqlx.DB
}

type notificationRepository struct {
	db *sqlx.DB
}

type identityRepository struct {
	db *sqlx.DB
}

func NewDispatchRepository(db *sqlx.DB) repository.DispatchRepository {
	return &dispatchRepository{BaseRepository: NewBaseRepository(db)}
}

func NewProfessionalRepository(db *sqlx.DB) repository.ProfessionalRepository {
	return &professionalRepository{db: db}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func NewCatalogRepository(db *sqlx.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func NewIdentityRepository(db *sqlx.DB) repository.IdentityRepository {
	return &identityRepository{db: db}
}
