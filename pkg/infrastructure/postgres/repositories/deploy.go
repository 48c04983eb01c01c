package repositories

import (
	"errors"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/postgres/schemas"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeployPostgresRepository struct {
	db *gorm.DB
}

func NewDeployPostgresRepository(db *gorm.DB) *DeployPostgresRepository {
	return &DeployPostgresRepository{db: db}
}

func (r *DeployPostgresRepository) CreateDeploy(deploy *entities.DeployEntity) error {
	row := deployToRow(deploy)
	return r.db.Create(row).Error
}

func (r *DeployPostgresRepository) GetByUUID(id string) (*entities.DeployEntity, error) {
	var row schemas.Deploy
	if err := r.db.Where("uuid = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return deployToEntity(&row), nil
}

func (r *DeployPostgresRepository) GetByBuildID(buildID uuid.UUID) ([]*entities.DeployEntity, error) {
	var rows []schemas.Deploy
	if err := r.db.Where("build_id = ?", buildID).Find(&rows).Error; err != nil {
		return nil, err
	}
	deploys := make([]*entities.DeployEntity, 0, len(rows))
	for i := range rows {
		deploys = append(deploys, deployToEntity(&rows[i]))
	}
	return deploys, nil
}

func (r *DeployPostgresRepository) CountByBuildID(buildID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&schemas.Deploy{}).Where("build_id = ?", buildID).Count(&count).Error
	return count, err
}

// PatchIdentity updates the identity fields the registrar refreshes on
// every attempt: deployable linkage, branch and hostnames. Status is not
// touched here; status moves only through PatchStatus.
func (r *DeployPostgresRepository) PatchIdentity(id string, fields map[string]interface{}) error {
	return r.db.Model(&schemas.Deploy{}).Where("uuid = ?", id).Updates(fields).Error
}

// SetRunUUID stamps a new attempt token onto the deploy. Unlike status
// patches this write is unguarded: a fresh attempt always supersedes the
// previous one.
func (r *DeployPostgresRepository) SetRunUUID(id string, runUUID string) error {
	return r.db.Model(&schemas.Deploy{}).Where("uuid = ?", id).Update("run_uuid", runUUID).Error
}

// PatchStatus applies a status patch only if the deploy still carries the
// given attempt token. The token check lives inside the UPDATE's WHERE
// clause so a superseded attempt can never win a read-then-write race.
// Returns false when the patch was dropped as stale.
func (r *DeployPostgresRepository) PatchStatus(
	id string,
	runUUID string,
	fields map[string]interface{},
) (bool, error) {
	res := r.db.Model(&schemas.Deploy{}).
		Where("uuid = ? AND run_uuid = ?", id, runUUID).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetBuildOutput reads just the accumulated build output of a deploy; the
// dependency resolver polls this while waiting on a sibling.
func (r *DeployPostgresRepository) GetBuildOutput(id string) (string, error) {
	var row schemas.Deploy
	err := r.db.Select("build_output").Where("uuid = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return row.BuildOutput, nil
}

// DeactivateByBuildID marks every deploy of a build inactive; used when the
// owning environment is torn down.
func (r *DeployPostgresRepository) DeactivateByBuildID(buildID uuid.UUID) error {
	return r.db.Model(&schemas.Deploy{}).
		Where("build_id = ?", buildID).
		Update("active", false).Error
}

func (r *DeployPostgresRepository) DeleteByBuildID(buildID uuid.UUID) error {
	return r.db.Where("build_id = ?", buildID).Delete(&schemas.Deploy{}).Error
}

func deployToRow(d *entities.DeployEntity) *schemas.Deploy {
	return &schemas.Deploy{
		UUID:         d.UUID,
		DeployableID: d.DeployableID,
		BuildID:      d.BuildID,
		Status:       d.Status,
		StatusReason: d.StatusReason,
		Active:       d.Active,
		RunUUID:      d.RunUUID,
		Branch:       d.Branch,
		Tag:          d.Tag,
		DockerImage:  d.DockerImage,
		PublicURL:    d.PublicURL,
		InternalHost: d.InternalHost,
		BuildOutput:  d.BuildOutput,
		BuildLogsURL: d.BuildLogsURL,
	}
}

func deployToEntity(row *schemas.Deploy) *entities.DeployEntity {
	return &entities.DeployEntity{
		UUID:         row.UUID,
		DeployableID: row.DeployableID,
		BuildID:      row.BuildID,
		Status:       row.Status,
		StatusReason: row.StatusReason,
		Active:       row.Active,
		RunUUID:      row.RunUUID,
		Branch:       row.Branch,
		Tag:          row.Tag,
		DockerImage:  row.DockerImage,
		PublicURL:    row.PublicURL,
		InternalHost: row.InternalHost,
		BuildOutput:  row.BuildOutput,
		BuildLogsURL: row.BuildLogsURL,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
