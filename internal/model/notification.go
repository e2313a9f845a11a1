package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the persisted in-app record of a dispatch event. Type
// carries the service name so professional dashboards can filter by skill.
type Notification struct {
	ID          int64     `db:"id" json:"id"`
	Type        string    `db:"type" json:"type"`
	ReferenceID int64     `db:"reference_id" json:"reference_id"`
	Message     string    `db:"message" json:"message"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DispatchEvent is the realtime payload published once per created
// request. One aggregate event, not one per candidate.
type DispatchEvent struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	ReferenceID int64     `json:"reference_id"`
	PatientName string    `json:"patient_name"`
	Address     string    `json:"address"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

type AcceptanceEmail struct {
	To               string
	PatientName      string
	ProfessionalName string
	Skill            string
	ServiceName      string
	Address          string
	StartDate        time.Time
	Availability     string
	EstimatedMinutes int
	TotalPrice       float64
}

type RejectionEmail struct {
	To          string
	PatientName string
	ServiceName string
	Address     string
}
