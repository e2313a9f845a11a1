package model

import (
	"time"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleProfessional Role = "professional"
)

// Credentials holds the identity fields shared by every role. Roles
// compose it instead of inheriting from a base user record.
type Credentials struct {
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Banned       bool   `db:"banned" json:"banned"`
}

// Identity is the single lookup record for authentication, keyed by the
// role discriminant. It replaces per-role credential probing.
type Identity struct {
	ID        int64     `db:"id" json:"id"`
	Role      Role      `db:"role" json:"role"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	Credentials
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	Phone     string   `json:"phone"`
	Skill     string   `json:"skill" validate:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      Role      `json:"role"`
	SubjectID int64     `json:"subject_id"`
}
