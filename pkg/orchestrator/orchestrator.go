package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/previewlabs/preview-backend/internal/logger"
	"github.com/previewlabs/preview-backend/internal/utils"
	"github.com/previewlabs/preview-backend/pkg/buildengine"
	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/globalconfig"
	"github.com/previewlabs/preview-backend/pkg/registrar"
	"github.com/previewlabs/preview-backend/pkg/resolver"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BuildRepository interface {
	GetBuildByID(id string) (*entities.BuildEntity, error)
}

type DeployRepository interface {
	SetRunUUID(id string, runUUID string) error
	PatchStatus(id string, runUUID string, fields map[string]interface{}) (bool, error)
	GetBuildOutput(id string) (string, error)
}

type SourceControl interface {
	GetShaForBranch(ctx context.Context, repo, branch string) (sha string, found bool, err error)
}

type RegistryClient interface {
	TagExists(ctx context.Context, image, tag string) (bool, error)
}

// Notifier renders status changes for humans. Fire and forget: failures
// are logged, never propagated into the state machine.
type Notifier interface {
	OnStatusChange(deploy *entities.DeployEntity, build *entities.BuildEntity) error
}

// LogArchiver ships build logs to long-term storage. Best effort only.
type LogArchiver interface {
	Archive(ctx context.Context, deployUUID string, logs string) error
}

// Deployer rolls the built image out to the cluster. Manifest generation
// and ingress wiring live behind this interface.
type Deployer interface {
	Deploy(ctx context.Context, deploy *entities.DeployEntity) error
}

type TaskManager interface {
	Start()
	AddTask(task entities.Task)
	Stop()
}

// Orchestrator drives every deploy of a build attempt through the status
// state machine. Each deploy runs as its own task on the worker pool;
// failures stay local to their deploy.
type Orchestrator struct {
	builds    BuildRepository
	deploys   DeployRepository
	resolver  *resolver.Resolver
	registrar *registrar.Registrar
	selector  *buildengine.Selector
	deps      *DependencyResolver
	scm       SourceControl
	registry  RegistryClient
	notifier  Notifier
	archiver  LogArchiver
	deployer  Deployer
	cfg       *globalconfig.Provider
	tasks     TaskManager
}

func NewOrchestrator(
	builds BuildRepository,
	deploys DeployRepository,
	rsv *resolver.Resolver,
	reg *registrar.Registrar,
	selector *buildengine.Selector,
	scm SourceControl,
	registry RegistryClient,
	notifier Notifier,
	archiver LogArchiver,
	deployer Deployer,
	cfg *globalconfig.Provider,
	tasks TaskManager,
) *Orchestrator {
	bc := cfg.Build()
	o := &Orchestrator{
		builds:    builds,
		deploys:   deploys,
		resolver:  rsv,
		registrar: reg,
		selector:  selector,
		deps:      NewDependencyResolver(deploys, bc.DependencyPollInterval, bc.DependencyPollAttempts),
		scm:       scm,
		registry:  registry,
		notifier:  notifier,
		archiver:  archiver,
		deployer:  deployer,
		cfg:       cfg,
		tasks:     tasks,
	}
	o.tasks.Start()
	return o
}

// ResolveAndBuild resolves the deployable set for one build attempt,
// registers deploys and dispatches each onto the worker pool. Safe to call
// again for the same attempt: deployables are recreated, deploy identities
// are reused, and fresh run tokens supersede any attempt still in flight.
func (o *Orchestrator) ResolveAndBuild(ctx context.Context, buildID uuid.UUID) ([]*entities.DeployEntity, error) {
	build, err := o.builds.GetBuildByID(buildID.String())
	if err != nil {
		return nil, fmt.Errorf("unknown build attempt %s: %w", buildID, err)
	}

	resolved, err := o.resolver.Resolve(ctx, build)
	if err != nil {
		return nil, err
	}

	deploys, err := o.registrar.Upsert(resolved, build)
	if err != nil {
		return nil, err
	}

	logger.Info("build attempt resolved",
		zap.String("build", buildID.String()),
		zap.Int("deploys", len(deploys)))

	// Deploy tasks outlive the triggering request; detach from its
	// cancellation while keeping request-scoped values.
	bgCtx := context.WithoutCancel(ctx)
	for _, deploy := range deploys {
		deploy := deploy
		o.tasks.AddTask(func() {
			o.ProcessDeploy(bgCtx, deploy)
		})
	}

	return deploys, nil
}

// ProcessDeploy runs the full state machine for one deploy. It never
// returns an error: every outcome lands in a status, and a panic inside
// an engine becomes BUILD_FAILED rather than a dead worker.
func (o *Orchestrator) ProcessDeploy(ctx context.Context, deploy *entities.DeployEntity) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic during deploy processing",
				zap.String("deploy", deploy.UUID), zap.Any("panic", r))
			o.patch(deploy, entities.DeployStatusBuildFailed, map[string]interface{}{
				"status_reason": fmt.Sprintf("internal error: %v", r),
			})
		}
	}()

	d := deploy.Deployable
	if d == nil {
		logger.Error("deploy has no deployable attached", zap.String("deploy", deploy.UUID))
		return
	}

	// Every attempt gets a fresh token; stamping it is unguarded because a
	// new attempt always supersedes whatever was running.
	runUUID := uuid.NewString()
	if err := o.deploys.SetRunUUID(deploy.UUID, runUUID); err != nil {
		logger.Error("failed to stamp run token",
			zap.String("deploy", deploy.UUID), zap.Error(err))
		return
	}
	deploy.RunUUID = runUUID

	if d.Status == entities.DeployStatusConfigError {
		o.patch(deploy, entities.DeployStatusConfigError, map[string]interface{}{
			"status_reason": d.StatusReason,
		})
		return
	}

	engine, err := o.selector.Select(d)
	if err != nil {
		var cfgErr *entities.ConfigError
		if errors.As(err, &cfgErr) {
			o.patch(deploy, entities.DeployStatusConfigError, map[string]interface{}{
				"status_reason": cfgErr.Reason,
			})
		} else {
			o.patch(deploy, entities.DeployStatusError, map[string]interface{}{
				"status_reason": err.Error(),
			})
		}
		return
	}

	revision, tag, ok := o.resolveRevision(ctx, deploy)
	if !ok {
		return
	}
	initTag := ""
	if d.InitDockerfile != "" {
		initTag = buildengine.InitImageTag(tag)
	}

	if o.tagExistsSkip(ctx, deploy, tag, initTag) {
		return
	}

	if len(d.Bindings) > 0 {
		if !o.awaitDependencies(ctx, deploy) {
			return
		}
	}

	if !o.patch(deploy, entities.DeployStatusCloning, nil) {
		return
	}

	result, err := engine.Build(ctx, deploy, buildengine.BuildOptions{
		Revision:  revision,
		Tag:       tag,
		InitTag:   initTag,
		Env:       d.Env,
		BuildArgs: o.buildArgs(deploy),
		OnBuilding: func() {
			o.patch(deploy, entities.DeployStatusBuilding, nil)
		},
	})
	if err != nil {
		logger.Error("build engine failed",
			zap.String("deploy", deploy.UUID), zap.Error(err))
		o.patch(deploy, entities.DeployStatusBuildFailed, map[string]interface{}{
			"status_reason": err.Error(),
		})
		return
	}

	fields := map[string]interface{}{"build_output": result.Logs}
	deploy.BuildOutput = result.Logs
	o.archive(ctx, deploy, result.Logs)

	if !result.Success {
		fields["status_reason"] = "build job failed"
		o.patch(deploy, entities.DeployStatusBuildFailed, fields)
		return
	}

	// Image fields are only written on a successful BUILT transition.
	if d.Image != "" {
		fields["tag"] = tag
		fields["docker_image"] = d.Image + ":" + tag
		deploy.Tag = tag
		deploy.DockerImage = d.Image + ":" + tag
	}
	if !o.patch(deploy, entities.DeployStatusBuilt, fields) {
		return
	}

	o.rollOut(ctx, deploy)
}

// resolveRevision produces the revision and deterministic tag for this
// attempt. Non-buildable types skip source resolution entirely.
func (o *Orchestrator) resolveRevision(ctx context.Context, deploy *entities.DeployEntity) (string, string, bool) {
	d := deploy.Deployable
	if d.TagOverride != "" {
		return "", d.TagOverride, true
	}
	if !d.Type.Buildable() {
		tag := "latest"
		if d.Type != entities.SourceTypeImage {
			tag = utils.ShortBuildID(d.BuildID)
		}
		return "", tag, true
	}

	sha, found, err := o.scm.GetShaForBranch(ctx, d.Repo, d.Branch)
	if err != nil {
		o.patch(deploy, entities.DeployStatusError, map[string]interface{}{
			"status_reason": fmt.Sprintf("failed to resolve branch %s: %v", d.Branch, err),
		})
		return "", "", false
	}
	if !found {
		o.patch(deploy, entities.DeployStatusConfigError, map[string]interface{}{
			"status_reason": fmt.Sprintf("branch %q not found in %s", d.Branch, d.Repo),
		})
		return "", "", false
	}
	return sha, buildengine.ImageTag(sha, d.Env, o.buildArgs(deploy)), true
}

// tagExistsSkip short-circuits the build when the deterministic tag (and
// the init tag, when one is configured) already exists in the registry.
func (o *Orchestrator) tagExistsSkip(ctx context.Context, deploy *entities.DeployEntity, tag, initTag string) bool {
	d := deploy.Deployable
	if !d.Type.Buildable() || d.TagOverride != "" {
		return false
	}
	exists, err := o.registry.TagExists(ctx, d.Image, tag)
	if err != nil {
		logger.Warn("tag existence check failed, building anyway",
			zap.String("deploy", deploy.UUID), zap.Error(err))
		return false
	}
	if !exists {
		return false
	}
	if initTag != "" {
		initExists, err := o.registry.TagExists(ctx, d.Image, initTag)
		if err != nil || !initExists {
			return false
		}
	}

	logger.Info("image already built, skipping",
		zap.String("deploy", deploy.UUID), zap.String("tag", tag))
	deploy.Tag = tag
	deploy.DockerImage = d.Image + ":" + tag
	if o.patch(deploy, entities.DeployStatusBuilt, map[string]interface{}{
		"tag":          tag,
		"docker_image": deploy.DockerImage,
	}) {
		o.rollOut(ctx, deploy)
	}
	return true
}

func (o *Orchestrator) awaitDependencies(ctx context.Context, deploy *entities.DeployEntity) bool {
	d := deploy.Deployable
	if !o.patch(deploy, entities.DeployStatusWaiting, nil) {
		return false
	}
	env, err := o.deps.Await(ctx, deploy, d.Bindings)
	if err != nil {
		logger.Error("dependency wait failed",
			zap.String("deploy", deploy.UUID), zap.Error(err))
		o.patch(deploy, entities.DeployStatusBuildFailed, map[string]interface{}{
			"status_reason": err.Error(),
		})
		return false
	}
	// One batch merge before the build starts.
	for k, v := range env {
		d.Env[k] = v
	}
	return true
}

// rollOut advances a built deploy through the deploy phase. Services with
// nothing to roll out go straight to READY.
func (o *Orchestrator) rollOut(ctx context.Context, deploy *entities.DeployEntity) {
	d := deploy.Deployable
	if d.Type == entities.SourceTypeExternal || d.Type == entities.SourceTypeConfig {
		o.patch(deploy, entities.DeployStatusReady, nil)
		return
	}
	if !o.patch(deploy, entities.DeployStatusDeploying, nil) {
		return
	}
	if err := o.deployer.Deploy(ctx, deploy); err != nil {
		logger.Error("rollout failed",
			zap.String("deploy", deploy.UUID), zap.Error(err))
		o.patch(deploy, entities.DeployStatusDeployFailed, map[string]interface{}{
			"status_reason": err.Error(),
		})
		return
	}
	o.patch(deploy, entities.DeployStatusDeployed, nil)
}

// patch applies a token-guarded status transition and notifies on
// success. A dropped patch means a newer attempt owns the deploy; the
// caller should stop progressing.
func (o *Orchestrator) patch(
	deploy *entities.DeployEntity,
	status entities.DeployStatus,
	fields map[string]interface{},
) bool {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["status"] = status
	applied, err := o.deploys.PatchStatus(deploy.UUID, deploy.RunUUID, fields)
	if err != nil {
		logger.Error("status patch failed",
			zap.String("deploy", deploy.UUID), zap.String("status", string(status)), zap.Error(err))
		return false
	}
	if !applied {
		logger.Warn("stale attempt, status patch dropped",
			zap.String("deploy", deploy.UUID),
			zap.String("status", string(status)),
			zap.String("runUUID", deploy.RunUUID))
		return false
	}
	deploy.Status = status
	if reason, ok := fields["status_reason"].(string); ok {
		deploy.StatusReason = reason
	}
	o.notify(deploy)
	return true
}

func (o *Orchestrator) notify(deploy *entities.DeployEntity) {
	// The notifier runs off the worker goroutine, which keeps mutating the
	// shared entity. Hand it a snapshot taken at patch time.
	snapshot := *deploy
	build := deploy.Build
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("notifier panicked", zap.Any("panic", r))
			}
		}()
		if err := o.notifier.OnStatusChange(&snapshot, build); err != nil {
			logger.Warn("status notification failed",
				zap.String("deploy", snapshot.UUID), zap.Error(err))
		}
	}()
}

func (o *Orchestrator) archive(ctx context.Context, deploy *entities.DeployEntity, logs string) {
	if logs == "" {
		return
	}
	id := deploy.UUID
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("log archiver panicked", zap.Any("panic", r))
			}
		}()
		if err := o.archiver.Archive(ctx, id, logs); err != nil {
			logger.Warn("log archival failed",
				zap.String("deploy", id), zap.Error(err))
		}
	}()
}

// buildArgs are the build-time variables injected into every source
// build; they participate in the deterministic tag.
func (o *Orchestrator) buildArgs(deploy *entities.DeployEntity) map[string]string {
	return map[string]string{
		"PREVIEW_BUILD":      utils.ShortBuildID(deploy.BuildID),
		"PREVIEW_SERVICE":    serviceName(deploy),
		"PREVIEW_PUBLIC_URL": deploy.PublicURL,
	}
}
