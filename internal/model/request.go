package model

import (
	"time"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
	RequestStatusDone     RequestStatus = "done"
)

// Request is one submitted care-service order. Patient fields are a
// snapshot captured at submission time, not a live reference. TotalPrice
// is frozen at creation and never recomputed.
type Request struct {
	ID                int64         `db:"id" json:"id"`
	ServiceID         int64         `db:"service_id" json:"service_id"`
	PatientCivility   string        `db:"patient_civility" json:"patient_civility"`
	PatientFirstname  string        `db:"patient_firstname" json:"patient_firstname"`
	PatientLastname   string        `db:"patient_lastname" json:"patient_lastname"`
	PatientBirthdate  *time.Time    `db:"patient_birthdate" json:"patient_birthdate,omitempty"`
	PatientPhone      string        `db:"patient_phone" json:"patient_phone"`
	PatientEmail      string        `db:"patient_email" json:"patient_email,omitempty"`
	Address           string        `db:"address" json:"address"`
	Latitude          *float64      `db:"latitude" json:"latitude,omitempty"`
	Longitude         *float64      `db:"longitude" json:"longitude,omitempty"`
	StartDate         time.Time     `db:"start_date" json:"start_date"`
	AvailabilityStart string        `db:"availability_start" json:"availability_start"`
	AvailabilityEnd   string        `db:"availability_end" json:"availability_end"`
	TotalPrice        float64       `db:"total_price" json:"total_price"`
	Status            RequestStatus `db:"status" json:"status"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// LineItem is one selected care option under a Request. Immutable after
// creation.
type LineItem struct {
	ID               int64   `db:"id" json:"id"`
	RequestID        int64   `db:"request_id" json:"request_id"`
	OptionID         int64   `db:"option_id" json:"option_id"`
	Answers          JSONMap `db:"answers" json:"answers,omitempty"`
	Recurring        bool    `db:"recurring" json:"recurring"`
	RecurrenceCount  *int    `db:"recurrence_count" json:"recurrence_count,omitempty"`
	RecurrencePeriod *string `db:"recurrence_period" json:"recurrence_period,omitempty"`
}

// RequestDocument is attachment metadata for a Request. File bytes live in
// the file store; only the location is recorded here.
type RequestDocument struct {
	ID           int64     `db:"id" json:"id"`
	RequestID    int64     `db:"request_id" json:"request_id"`
	FilePath     string    `db:"file_path" json:"file_path"`
	OriginalName string    `db:"original_name" json:"original_name"`
	MimeType     string    `db:"mime_type" json:"mime_type"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type LineItemInput struct {
	OptionID         int64   `json:"option_id" validate:"required"`
	Answers          JSONMap `json:"answers"`
	Recurring        bool    `json:"recurring"`
	RecurrenceCount  *int    `json:"recurrence_count"`
	RecurrencePeriod *string `json:"recurrence_period"`
}

type CreateRequestInput struct {
	ServiceID         int64           `json:"service_id" validate:"required"`
	PatientCivility   string          `json:"patient_civility"`
	PatientFirstname  string          `json:"patient_firstname" validate:"required"`
	PatientLastname   string          `json:"patient_lastname" validate:"required"`
	PatientBirthdate  *time.Time      `json:"patient_birthdate"`
	PatientPhone      string          `json:"patient_phone" validate:"required"`
	PatientEmail      string          `json:"patient_email" validate:"omitempty,email"`
	Address           string          `json:"address" validate:"required"`
	Latitude          *float64        `json:"latitude"`
	Longitude         *float64        `json:"longitude"`
	StartDate         time.Time       `json:"start_date" validate:"required"`
	AvailabilityStart string          `json:"availability_start" validate:"required,timeofday"`
	AvailabilityEnd   string          `json:"availability_end" validate:"required,timeofday"`
	Items             []LineItemInput `json:"items" validate:"dive"`
}

// FileUpload carries attachment bytes from the transport layer to the
// file store.
type FileUpload struct {
	OriginalName string
	ContentType  string
	Data         []byte
}

// RequestSummary is the admin list view: a request joined with its winning
// professional, if any.
type RequestSummary struct {
	Request              *Request             `json:"request"`
	AcceptedProfessional *ProfessionalSummary `json:"accepted_professional,omitempty"`
	Distance             *float64             `json:"distance,omitempty"`
	AssignmentStatus     string               `json:"assignment_status"`
}
