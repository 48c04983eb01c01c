package services

import (
	"context"
	"fmt"

	"github.com/previewlabs/preview-backend/internal/logger"
	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/orchestrator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BuildRepository interface {
	CreateBuild(build *entities.BuildEntity) error
	GetBuildByID(id string) (*entities.BuildEntity, error)
	GetAllBuilds() ([]*entities.BuildEntity, error)
	UpdateBuildStatus(id string, status entities.BuildStatus) error
}

type DeployRepository interface {
	GetByBuildID(buildID uuid.UUID) ([]*entities.DeployEntity, error)
	DeactivateByBuildID(buildID uuid.UUID) error
	DeleteByBuildID(buildID uuid.UUID) error
}

type OverrideRepository interface {
	CreateOverride(repo string, prNumber int, o *entities.BranchOverride) error
}

// PreviewService is the application entry point for preview environments:
// create a build attempt for a PR, (re)trigger its resolution, read it
// back, tear it down.
type PreviewService struct {
	builds       BuildRepository
	deploys      DeployRepository
	overrides    OverrideRepository
	orchestrator *orchestrator.Orchestrator
}

func NewPreviewService(
	builds BuildRepository,
	deploys DeployRepository,
	overrides OverrideRepository,
	orch *orchestrator.Orchestrator,
) *PreviewService {
	return &PreviewService{
		builds:       builds,
		deploys:      deploys,
		overrides:    overrides,
		orchestrator: orch,
	}
}

// AddOverride records a comment-driven override for the PR owning the
// build and re-triggers resolution so it takes effect.
func (s *PreviewService) AddOverride(
	ctx context.Context,
	buildID uuid.UUID,
	override *entities.BranchOverride,
) error {
	build, err := s.builds.GetBuildByID(buildID.String())
	if err != nil {
		return fmt.Errorf("failed to get build: %w", err)
	}
	if err := s.overrides.CreateOverride(build.Repo, build.PRNumber, override); err != nil {
		return err
	}
	_, err = s.orchestrator.ResolveAndBuild(ctx, buildID)
	return err
}

// CreateBuild registers a new build attempt and immediately resolves it.
func (s *PreviewService) CreateBuild(
	ctx context.Context,
	repo, branch string,
	prNumber int,
	optionalSets []string,
) (*entities.BuildEntity, []*entities.DeployEntity, error) {
	build := &entities.BuildEntity{
		ID:           uuid.New(),
		Repo:         repo,
		Branch:       branch,
		PRNumber:     prNumber,
		OptionalSets: optionalSets,
		Status:       entities.BuildStatusPending,
	}
	if err := s.builds.CreateBuild(build); err != nil {
		return nil, nil, fmt.Errorf("failed to create build: %w", err)
	}
	logger.Info("build attempt created",
		zap.String("build", build.ID.String()),
		zap.String("repo", repo),
		zap.Int("pr", prNumber))

	deploys, err := s.orchestrator.ResolveAndBuild(ctx, build.ID)
	if err != nil {
		return build, nil, err
	}
	if err := s.builds.UpdateBuildStatus(build.ID.String(), entities.BuildStatusInProgress); err != nil {
		logger.Warn("failed to update build status", zap.Error(err))
	}
	return build, deploys, nil
}

// Trigger re-runs resolution and building for an existing attempt.
// Idempotent: unchanged services hit the tag-exists skip.
func (s *PreviewService) Trigger(ctx context.Context, buildID uuid.UUID) ([]*entities.DeployEntity, error) {
	return s.orchestrator.ResolveAndBuild(ctx, buildID)
}

func (s *PreviewService) GetBuild(buildID uuid.UUID) (*entities.BuildEntity, error) {
	return s.builds.GetBuildByID(buildID.String())
}

func (s *PreviewService) ListBuilds() ([]*entities.BuildEntity, error) {
	return s.builds.GetAllBuilds()
}

func (s *PreviewService) GetDeploys(buildID uuid.UUID) ([]*entities.DeployEntity, error) {
	return s.deploys.GetByBuildID(buildID)
}

// Teardown deactivates and removes every deploy of a build. Deploy rows
// only ever disappear here, when the owning environment goes away.
func (s *PreviewService) Teardown(ctx context.Context, buildID uuid.UUID) error {
	if _, err := s.builds.GetBuildByID(buildID.String()); err != nil {
		return fmt.Errorf("failed to get build: %w", err)
	}
	if err := s.deploys.DeactivateByBuildID(buildID); err != nil {
		return err
	}
	if err := s.deploys.DeleteByBuildID(buildID); err != nil {
		return err
	}
	if err := s.builds.UpdateBuildStatus(buildID.String(), entities.BuildStatusTornDown); err != nil {
		return err
	}
	logger.Info("build torn down", zap.String("build", buildID.String()))
	return nil
}
