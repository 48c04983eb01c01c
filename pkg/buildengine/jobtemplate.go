package buildengine

import (
	"context"
	"fmt"
	"regexp"

	"github.com/previewlabs/preview-backend/internal/logger"
	"github.com/previewlabs/preview-backend/internal/utils"
	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/globalconfig"

	"go.uber.org/zap"
)

// ContainerSpec is one container of a build job.
type ContainerSpec struct {
	Name       string
	Image      string
	Command    []string
	Args       []string
	Env        map[string]string
	WorkingDir string
	Resources  entities.ResourceSpec
}

// JobSpec is the cluster job both native executors share: an init step
// that clones the workspace, then one build container per target image.
// The workspace volume is scoped to the job, never shared across deploys.
type JobSpec struct {
	Name            string
	Namespace       string
	Labels          map[string]string
	InitContainers  []ContainerSpec
	Containers      []ContainerSpec
	WorkspaceVolume string
}

const workspaceDir = "/workspace"

// buildContainerFn renders the technology-specific build container; the
// rest of the job template is shared between executors.
type buildContainerFn func(
	d *entities.DeployableEntity,
	opts BuildOptions,
	dockerfile, destination, cacheRef, authToken string,
	bc globalconfig.BuildConfig,
) ContainerSpec

// nativeEngine runs containerized builds as cluster jobs. Kaniko and
// BuildKit engines differ only in the build container they render.
type nativeEngine struct {
	builder  entities.Builder
	jobs     ClusterJobRunner
	registry RegistryClient
	cfg      *globalconfig.Provider
	render   buildContainerFn
}

func (e *nativeEngine) Supports(t entities.SourceType, b entities.Builder) bool {
	return t == entities.SourceTypeDockerfile && b == e.builder
}

func (e *nativeEngine) Build(
	ctx context.Context,
	deploy *entities.DeployEntity,
	opts BuildOptions,
) (*entities.BuildAttemptResult, error) {
	d := deploy.Deployable
	bc := e.cfg.Build()
	cc := e.cfg.Cluster()

	authToken, err := e.registryToken(ctx, d, bc)
	if err != nil {
		return nil, &entities.BuildExecutionError{Service: d.Name, Cause: err}
	}

	cacheRef := CacheRef(bc.CacheRegistry, d.Image, d.Name)
	spec := &JobSpec{
		Name:      utils.JobName(d.Name, d.BuildID),
		Namespace: cc.Namespace,
		Labels: map[string]string{
			cc.LabelPrefix + "/build":   utils.ShortBuildID(d.BuildID),
			cc.LabelPrefix + "/service": d.Name,
		},
		WorkspaceVolume: "workspace",
		InitContainers:  []ContainerSpec{cloneContainer(d, opts, bc)},
		Containers: []ContainerSpec{
			e.render(d, opts, d.Dockerfile, d.Image+":"+opts.Tag, cacheRef, authToken, bc),
		},
	}
	if d.InitDockerfile != "" && opts.InitTag != "" {
		// Second image from the same workspace, built in parallel.
		init := e.render(d, opts, d.InitDockerfile, d.Image+":"+opts.InitTag, cacheRef, authToken, bc)
		init.Name = "build-init"
		spec.Containers = append(spec.Containers, init)
	}

	handle, err := e.jobs.Apply(ctx, spec)
	if err != nil {
		return nil, &entities.BuildExecutionError{
			Service: d.Name,
			Cause:   fmt.Errorf("failed to apply build job: %w", err),
		}
	}
	if opts.OnBuilding != nil {
		opts.OnBuilding()
	}

	res, err := e.jobs.AwaitCompletion(ctx, handle, bc.JobTimeout)
	if err != nil {
		// Timeout or lost logs. The job may still have finished; ask it
		// directly before concluding failure so a transient log-sidecar
		// hiccup does not fail a good build.
		done, perr := e.jobs.ProbeComplete(ctx, handle)
		if perr == nil && done {
			logger.Warn("build logs unavailable, trusting job completion status",
				zap.String("deploy", deploy.UUID), zap.String("job", handle.Name))
			return &entities.BuildAttemptResult{Success: true, JobID: handle.Name}, nil
		}
		return nil, &entities.BuildExecutionError{
			Service: d.Name,
			Cause:   fmt.Errorf("build job %s did not complete: %w", handle.Name, err),
		}
	}

	return &entities.BuildAttemptResult{
		Success: res.Success,
		Logs:    res.Logs,
		JobID:   handle.Name,
	}, nil
}

// registryToken authenticates the destination registry. Cloud-managed
// registries (matched by hostname pattern) need a token exchange; an
// in-cluster or self-hosted registry needs nothing.
func (e *nativeEngine) registryToken(
	ctx context.Context,
	d *entities.DeployableEntity,
	bc globalconfig.BuildConfig,
) (string, error) {
	host := registryHost(d.Image)
	if host == "" {
		return "", nil
	}
	managed, err := regexp.MatchString(bc.ManagedRegistryPattern, host)
	if err != nil {
		return "", fmt.Errorf("invalid managed registry pattern: %w", err)
	}
	if !managed {
		return "", nil
	}
	token, err := e.registry.ExchangeToken(ctx, host)
	if err != nil {
		return "", fmt.Errorf("registry token exchange for %s failed: %w", host, err)
	}
	return token, nil
}

func cloneContainer(
	d *entities.DeployableEntity,
	opts BuildOptions,
	bc globalconfig.BuildConfig,
) ContainerSpec {
	return ContainerSpec{
		Name:       "clone",
		Image:      bc.GitCloneImage,
		WorkingDir: workspaceDir,
		Command:    []string{"sh", "-c"},
		Args: []string{fmt.Sprintf(
			"git clone --depth 50 --branch %s https://github.com/%s.git . && git checkout %s",
			d.Branch, d.Repo, opts.Revision,
		)},
	}
}

// buildResources falls back to the configured defaults when the
// deployable does not request anything.
func buildResources(d *entities.DeployableEntity, bc globalconfig.BuildConfig) entities.ResourceSpec {
	res := d.Resources
	if res.CPURequest == "" {
		res.CPURequest = bc.DefaultCPURequest
	}
	if res.MemoryRequest == "" {
		res.MemoryRequest = bc.DefaultMemoryRequest
	}
	return res
}
