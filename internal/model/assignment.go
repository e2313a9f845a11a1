package model

import (
	"time"
)

type AssignmentStatus string

const (
	AssignmentStatusPending  AssignmentStatus = "pending"
	AssignmentStatusAccepted AssignmentStatus = "accepted"
	AssignmentStatusDenied   AssignmentStatus = "denied"
)

// Assignment is one professional's candidacy against a Request. For any
// Request at most one Assignment ever holds the accepted status; once the
// Request resolves, every sibling is either the winner or denied.
type Assignment struct {
	ID             int64            `db:"id" json:"id"`
	RequestID      int64            `db:"request_id" json:"request_id"`
	ProfessionalID int64            `db:"professional_id" json:"professional_id"`
	Status         AssignmentStatus `db:"status" json:"status"`
	Distance       *float64         `db:"distance" json:"distance,omitempty"`
	Message        string           `db:"message" json:"message"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// TransitionResult identifies the request and professional involved in a
// resolved accept/deny call.
type TransitionResult struct {
	RequestID      int64 `json:"request_id"`
	ProfessionalID int64 `json:"professional_id"`
}

type CompleteResult struct {
	RequestID int64         `json:"request_id"`
	Status    RequestStatus `json:"status"`
}
