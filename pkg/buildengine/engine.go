package buildengine

import (
	"context"
	"fmt"
	"time"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
)

// BuildOptions carries the per-attempt inputs an engine needs beyond the
// deployable itself.
type BuildOptions struct {
	Revision  string
	Tag       string
	InitTag   string
	Env       map[string]string
	BuildArgs map[string]string

	// OnBuilding fires once the build workload has been accepted by its
	// backend, letting the caller advance status past CLONING.
	OnBuilding func()
}

// Engine is one build technology. Build returns a completed attempt
// (success or failure, with logs when retrievable) or an error for
// infrastructure problems that prevented a verdict.
type Engine interface {
	Build(ctx context.Context, deploy *entities.DeployEntity, opts BuildOptions) (*entities.BuildAttemptResult, error)
	Supports(t entities.SourceType, b entities.Builder) bool
}

// Selector picks exactly one engine per deployable. An unsupported
// (type, builder) pair is a configuration error, never a fallback.
type Selector struct {
	engines []Engine
}

func NewSelector(engines ...Engine) *Selector {
	return &Selector{engines: engines}
}

func (s *Selector) Select(d *entities.DeployableEntity) (Engine, error) {
	for _, e := range s.engines {
		if e.Supports(d.Type, d.Builder) {
			return e, nil
		}
	}
	return nil, &entities.ConfigError{
		Service: d.Name,
		Reason:  fmt.Sprintf("no build engine for type %q with builder %q", d.Type, d.Builder),
	}
}

// JobHandle identifies a running cluster job.
type JobHandle struct {
	Name      string
	Namespace string
}

// JobResult is what the cluster reports for a finished job.
type JobResult struct {
	Success bool
	Logs    string
}

// ClusterJobRunner is the consumed cluster interface. AwaitCompletion
// returns an error on timeout or when logs could not be retrieved;
// ProbeComplete asks the job object directly and is the fallback for a
// transient log-sidecar failure.
type ClusterJobRunner interface {
	Apply(ctx context.Context, spec *JobSpec) (JobHandle, error)
	AwaitCompletion(ctx context.Context, handle JobHandle, timeout time.Duration) (JobResult, error)
	ProbeComplete(ctx context.Context, handle JobHandle) (bool, error)
}

// RegistryClient is the consumed image registry interface.
type RegistryClient interface {
	TagExists(ctx context.Context, image, tag string) (bool, error)
	ExchangeToken(ctx context.Context, registryHost string) (string, error)
}

// RunStatus is the state of a remote CI pipeline run.
type RunStatus struct {
	Completed bool
	Success   bool
}

// CIClient is the consumed remote CI interface. Logs are only available
// after completion; there is no local job object to fall back on.
type CIClient interface {
	TriggerPipeline(ctx context.Context, pipeline string, args map[string]string) (string, error)
	GetRunStatus(ctx context.Context, runID string) (RunStatus, error)
	GetRunLogs(ctx context.Context, runID string) (string, error)
}

// DatastoreClient is the consumed managed-datastore interface used by the
// restore backend.
type DatastoreClient interface {
	RestoreExists(ctx context.Context, buildID, service string) (bool, error)
	TriggerRestore(ctx context.Context, buildID, service string) (string, error)
}
