package entities

import (
	"time"

	"github.com/google/uuid"
)

// BuildEntity is one PR-triggered provisioning cycle covering every
// service of the environment.
type BuildEntity struct {
	ID           uuid.UUID
	Repo         string
	Branch       string
	PRNumber     int
	OptionalSets []string
	Status       BuildStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
