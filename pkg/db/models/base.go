package models

import (
	"github.com/google/uuid"
)

// ensureID assigns a fresh UUID when the primary key is still zero so rows can
// be inserted without relying on a database-side default.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
