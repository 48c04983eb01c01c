package entities

import (
	"github.com/google/uuid"
)

// ResourceSpec carries container resource requests/limits as plain
// quantity strings ("500m", "512Mi").
type ResourceSpec struct {
	CPURequest    string `json:"cpuRequest,omitempty"`
	CPULimit      string `json:"cpuLimit,omitempty"`
	MemoryRequest string `json:"memoryRequest,omitempty"`
	MemoryLimit   string `json:"memoryLimit,omitempty"`
}

// ProbeSpec is the readiness probe attached to a deployed service.
type ProbeSpec struct {
	Path                string `json:"path,omitempty"`
	Port                int    `json:"port,omitempty"`
	InitialDelaySeconds int    `json:"initialDelaySeconds,omitempty"`
	PeriodSeconds       int    `json:"periodSeconds,omitempty"`
}

// EnvBinding declares a wait-and-extract dependency: before this service
// builds, wait for SourceService's build output and pull a value out of it
// with Pattern. An empty Pattern waits for completion without extracting
// anything.
type EnvBinding struct {
	SourceService string `json:"sourceService"`
	EnvKey        string `json:"envKey,omitempty"`
	Pattern       string `json:"pattern,omitempty"`
}

// DeployableEntity is the resolved, buildable definition of one service
// within one build attempt. Identity is unique per (build, name); a fresh
// set is produced on every attempt by the resolver.
type DeployableEntity struct {
	ID             uuid.UUID
	BuildID        uuid.UUID
	Name           string
	Type           SourceType
	Builder        Builder
	Repo           string
	Branch         string
	Image          string
	Dockerfile     string
	InitDockerfile string
	DependsOn      string
	Requires       []string
	Env            map[string]string
	Bindings       []EnvBinding
	Resources      ResourceSpec
	Probe          ProbeSpec
	Port           int
	Host           string

	// TagOverride pins the image tag when a comment-driven override asked
	// for one; empty means the tag is computed per attempt.
	TagOverride string

	// Status is empty for a healthy deployable; the resolver sets it to
	// DeployStatusConfigError when the definition itself is defective.
	Status       DeployStatus
	StatusReason string
}
