package model

import (
	"github.com/google/uuid"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleNurse   Role = "nurse"
	RoleAdmin   Role = "admin"
	RoleUnknown Role = "unknown"
)

// ParseRole decodes a role claim. Anything unrecognized becomes unknown,
// which is treated as unauthenticated by every mutating operation.
func ParseRole(s string) Role {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleNurse, RoleAdmin:
		return Role(s)
	default:
		return RoleUnknown
	}
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}
