package repositories

import (
	"encoding/json"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/postgres/schemas"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DeployablePostgresRepository struct {
	db *gorm.DB
}

func NewDeployablePostgresRepository(db *gorm.DB) *DeployablePostgresRepository {
	return &DeployablePostgresRepository{db: db}
}

// ReplaceForBuild swaps the deployable set of one build attempt in a single
// transaction. Deployables are recreated fresh on every attempt; stale rows
// from a previous resolution must not leak into the new one.
func (r *DeployablePostgresRepository) ReplaceForBuild(
	buildID uuid.UUID,
	deployables []*entities.DeployableEntity,
) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("build_id = ?", buildID).Delete(&schemas.Deployable{}).Error; err != nil {
			return err
		}
		for _, d := range deployables {
			row, err := deployableToRow(d)
			if err != nil {
				return err
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DeployablePostgresRepository) GetByBuildID(buildID uuid.UUID) ([]*entities.DeployableEntity, error) {
	var rows []schemas.Deployable
	if err := r.db.Where("build_id = ?", buildID).Find(&rows).Error; err != nil {
		return nil, err
	}
	deployables := make([]*entities.DeployableEntity, 0, len(rows))
	for i := range rows {
		d, err := deployableToEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		deployables = append(deployables, d)
	}
	return deployables, nil
}

func (r *DeployablePostgresRepository) GetByID(id uuid.UUID) (*entities.DeployableEntity, error) {
	var row schemas.Deployable
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return deployableToEntity(&row)
}

// PatchBranch updates the branch of one deployable in place. Branch and tag
// are the only fields comment-driven overrides may touch after resolution.
func (r *DeployablePostgresRepository) PatchBranch(id uuid.UUID, branch string) error {
	return r.db.Model(&schemas.Deployable{}).Where("id = ?", id).Update("branch", branch).Error
}

func deployableToRow(d *entities.DeployableEntity) (*schemas.Deployable, error) {
	env, err := json.Marshal(d.Env)
	if err != nil {
		return nil, err
	}
	bindings, err := json.Marshal(d.Bindings)
	if err != nil {
		return nil, err
	}
	requires, err := json.Marshal(d.Requires)
	if err != nil {
		return nil, err
	}
	resources, err := json.Marshal(d.Resources)
	if err != nil {
		return nil, err
	}
	probe, err := json.Marshal(d.Probe)
	if err != nil {
		return nil, err
	}
	return &schemas.Deployable{
		ID:             d.ID,
		BuildID:        d.BuildID,
		Name:           d.Name,
		Type:           d.Type,
		Builder:        d.Builder,
		Repo:           d.Repo,
		Branch:         d.Branch,
		Image:          d.Image,
		Dockerfile:     d.Dockerfile,
		InitDockerfile: d.InitDockerfile,
		DependsOn:      d.DependsOn,
		Requires:       datatypes.JSON(requires),
		Env:            datatypes.JSON(env),
		Bindings:       datatypes.JSON(bindings),
		Resources:      datatypes.JSON(resources),
		Probe:          datatypes.JSON(probe),
		Port:           d.Port,
		Host:           d.Host,
		TagOverride:    d.TagOverride,
		Status:         d.Status,
		StatusReason:   d.StatusReason,
	}, nil
}

func deployableToEntity(row *schemas.Deployable) (*entities.DeployableEntity, error) {
	d := &entities.DeployableEntity{
		ID:             row.ID,
		BuildID:        row.BuildID,
		Name:           row.Name,
		Type:           row.Type,
		Builder:        row.Builder,
		Repo:           row.Repo,
		Branch:         row.Branch,
		Image:          row.Image,
		Dockerfile:     row.Dockerfile,
		InitDockerfile: row.InitDockerfile,
		DependsOn:      row.DependsOn,
		Port:           row.Port,
		Host:           row.Host,
		TagOverride:    row.TagOverride,
		Status:         row.Status,
		StatusReason:   row.StatusReason,
	}
	if len(row.Env) > 0 {
		if err := json.Unmarshal(row.Env, &d.Env); err != nil {
			return nil, err
		}
	}
	if len(row.Bindings) > 0 {
		if err := json.Unmarshal(row.Bindings, &d.Bindings); err != nil {
			return nil, err
		}
	}
	if len(row.Requires) > 0 {
		if err := json.Unmarshal(row.Requires, &d.Requires); err != nil {
			return nil, err
		}
	}
	if len(row.Resources) > 0 {
		if err := json.Unmarshal(row.Resources, &d.Resources); err != nil {
			return nil, err
		}
	}
	if len(row.Probe) > 0 {
		if err := json.Unmarshal(row.Probe, &d.Probe); err != nil {
			return nil, err
		}
	}
	return d, nil
}
