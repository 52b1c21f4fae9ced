package model

import (
	"github.com/google/uuid"
)

// Identity is the per-request caller context resolved once at the boundary.
// Workflow services receive it explicitly instead of reading session state.
type Identity struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
}

func (i *Identity) IsPatient() bool {
	return i.Role == RolePatient
}

func (i *Identity) IsDoctor() bool {
	return i.Role == RoleDoctor
}
