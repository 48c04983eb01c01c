package registrar

import (
	"fmt"
	"sort"

	"github.com/previewlabs/preview-backend/internal/logger"
	"github.com/previewlabs/preview-backend/internal/utils"
	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/globalconfig"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DeployRepository interface {
	GetByUUID(id string) (*entities.DeployEntity, error)
	CreateDeploy(deploy *entities.DeployEntity) error
	PatchIdentity(id string, fields map[string]interface{}) error
	CountByBuildID(buildID uuid.UUID) (int64, error)
}

// Registrar turns a resolved deployable set into deploy records. Upserts
// are keyed on the deterministic deploy UUID, so calling it again for the
// same attempt patches identity fields instead of duplicating rows.
type Registrar struct {
	deploys DeployRepository
	cfg     *globalconfig.Provider
}

func NewRegistrar(deploys DeployRepository, cfg *globalconfig.Provider) *Registrar {
	return &Registrar{deploys: deploys, cfg: cfg}
}

func (g *Registrar) Upsert(
	deployables map[string]*entities.DeployableEntity,
	build *entities.BuildEntity,
) ([]*entities.DeployEntity, error) {
	names := make([]string, 0, len(deployables))
	for name := range deployables {
		names = append(names, name)
	}
	sort.Strings(names)

	cluster := g.cfg.Cluster()
	deploys := make([]*entities.DeployEntity, 0, len(names))
	for _, name := range names {
		d := deployables[name]
		deploy, err := g.upsertOne(d, build, cluster)
		if err != nil {
			return nil, fmt.Errorf("failed to register deploy for %q: %w", name, err)
		}
		deploy.Deployable = d
		deploy.Build = build
		deploys = append(deploys, deploy)
	}

	// Structural invariant: one deploy per resolved deployable. A mismatch
	// is a known source of silent drift, so it is loud but not fatal.
	count, err := g.deploys.CountByBuildID(build.ID)
	if err != nil {
		logger.Warn("failed to count deploys for parity check", zap.Error(err))
	} else if count != int64(len(deployables)) {
		logger.Warn("deploy count does not match resolved deployables",
			zap.String("build", build.ID.String()),
			zap.Int64("deploys", count),
			zap.Int("deployables", len(deployables)))
	}

	return deploys, nil
}

func (g *Registrar) upsertOne(
	d *entities.DeployableEntity,
	build *entities.BuildEntity,
	cluster globalconfig.ClusterConfig,
) (*entities.DeployEntity, error) {
	id := entities.DeployUUID(d.Name, build.ID)
	publicURL := utils.PublicURL(d.Name, build.ID, cluster.BaseDomain)
	internalHost := utils.InternalHost(d.Name, build.ID, cluster.Namespace)

	existing, err := g.deploys.GetByUUID(id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		fields := map[string]interface{}{
			"deployable_id": d.ID,
			"branch":        d.Branch,
			"public_url":    publicURL,
			"internal_host": internalHost,
			"active":        true,
		}
		// An override pins the tag; without one the tag of the last
		// completed build must survive the re-trigger.
		if d.TagOverride != "" {
			fields["tag"] = d.TagOverride
		}
		err := g.deploys.PatchIdentity(id, fields)
		if err != nil {
			return nil, err
		}
		existing.DeployableID = d.ID
		existing.Branch = d.Branch
		existing.PublicURL = publicURL
		existing.InternalHost = internalHost
		existing.Active = true
		if d.TagOverride != "" {
			existing.Tag = d.TagOverride
		}
		return existing, nil
	}

	deploy := &entities.DeployEntity{
		UUID:         id,
		DeployableID: d.ID,
		BuildID:      build.ID,
		Status:       entities.DeployStatusQueued,
		Active:       true,
		Branch:       d.Branch,
		Tag:          d.TagOverride,
		PublicURL:    publicURL,
		InternalHost: internalHost,
	}
	if d.Status == entities.DeployStatusConfigError {
		deploy.Status = entities.DeployStatusConfigError
		deploy.StatusReason = d.StatusReason
	}
	if err := g.deploys.CreateDeploy(deploy); err != nil {
		return nil, err
	}
	return deploy, nil
}
