package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DeployUUID derives the stable identity of a deploy from its service name
// and build. Recreating a deploy for the same pair must land on the same
// row, so the ID is deterministic rather than random.
func DeployUUID(serviceName string, buildID uuid.UUID) string {
	return fmt.Sprintf("%s-%s", serviceName, buildID)
}

// DeployEntity is the stateful execution unit binding one deployable to
// one build attempt. UUID and identity survive rebuilds; RunUUID is
// regenerated on every attempt and guards status patches against stale
// writers.
type DeployEntity struct {
	UUID         string
	DeployableID uuid.UUID
	BuildID      uuid.UUID
	Status       DeployStatus
	StatusReason string
	Active       bool
	RunUUID      string
	Branch       string
	Tag          string
	DockerImage  string
	PublicURL    string
	InternalHost string
	BuildOutput  string
	BuildLogsURL string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// In-memory back-references populated by the registrar so callers can
	// keep working without an extra read. Never persisted.
	Deployable *DeployableEntity `json:"-"`
	Build      *BuildEntity      `json:"-"`
}

// BuildAttemptResult is the ephemeral outcome of one engine invocation.
// Logs are copied onto the deploy's build output; nothing else survives.
type BuildAttemptResult struct {
	Success bool
	Logs    string
	JobID   string
}
