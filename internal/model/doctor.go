package model

import (
	"github.com/google/uuid"
)

// Doctor is the directory summary used by the booking flow's doctor picker
// and by request-time validation.
type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Specialty *string   `db:"specialty" json:"specialty,omitempty"`
	Email     string    `db:"email" json:"email"`
	Available bool      `db:"available" json:"available"`
}
