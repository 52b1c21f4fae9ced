package model

import (
	"time"

	"github.com/google/uuid"
)

// Role gates every workflow operation and is fixed at registration.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// User represents a portal account
type User struct {
	Base
	Username     string  `json:"username" db:"username"`
	PasswordHash string  `json:"-" db:"password_hash"`
	Email        *string `json:"email,omitempty" db:"email"`
	Role         Role    `json:"role" db:"role"`
}

// DoctorSummary is what the booking form needs from the doctor directory.
type DoctorSummary struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Username string    `json:"username" db:"username"`
}

// PatientDetail is the doctor-facing view of a patient and their records.
type PatientDetail struct {
	ID           uuid.UUID        `json:"id"`
	Username     string           `json:"username"`
	RegisteredAt time.Time        `json:"registered_at"`
	Records      []*MedicalRecord `json:"records"`
}

// RegisterRequest represents registration form parameters
type RegisterRequest struct {
	Username        string `form:"username" json:"username"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	Role            string `form:"role" json:"role"`
	Email           string `form:"email" json:"email" binding:"omitempty,email"`
}

// LoginRequest represents login form parameters
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// TokenResponse is returned on login for non-browser clients.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
