package model

import (
	"time"
)

// Patient is the directory record maintained by idempotent upserts. One
// record per person, merged by phone with email as fallback key.
type Patient struct {
	ID        int64      `db:"id" json:"id"`
	Civility  string     `db:"civility" json:"civility"`
	Firstname string     `db:"firstname" json:"firstname"`
	Lastname  string     `db:"lastname" json:"lastname"`
	Birthdate *time.Time `db:"birthdate" json:"birthdate,omitempty"`
	Phone     string     `db:"phone" json:"phone"`
	Email     string     `db:"email" json:"email,omitempty"`
	Address   string     `db:"address" json:"address"`
	Latitude  *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64   `db:"longitude" json:"longitude,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// PatientSnapshot is the merge payload for the directory upsert.
type PatientSnapshot struct {
	Civility  string
	Firstname string
	Lastname  string
	Birthdate *time.Time
	Phone     string
	Email     string
	Address   string
	Latitude  *float64
	Longitude *float64
}
