package repositories

import (
	"encoding/json"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/postgres/schemas"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BuildPostgresRepository struct {
	db *gorm.DB
}

func NewBuildPostgresRepository(db *gorm.DB) *BuildPostgresRepository {
	return &BuildPostgresRepository{db: db}
}

func (r *BuildPostgresRepository) CreateBuild(build *entities.BuildEntity) error {
	sets, err := json.Marshal(build.OptionalSets)
	if err != nil {
		return err
	}
	row := schemas.Build{
		ID:           build.ID,
		Repo:         build.Repo,
		Branch:       build.Branch,
		PRNumber:     build.PRNumber,
		OptionalSets: datatypes.JSON(sets),
		Status:       build.Status,
	}
	return r.db.Create(&row).Error
}

func (r *BuildPostgresRepository) GetBuildByID(id string) (*entities.BuildEntity, error) {
	var row schemas.Build
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return buildToEntity(&row)
}

func (r *BuildPostgresRepository) UpdateBuildStatus(id string, status entities.BuildStatus) error {
	return r.db.Model(&schemas.Build{}).Where("id = ?", id).Update("status", status).Error
}

func (r *BuildPostgresRepository) GetAllBuilds() ([]*entities.BuildEntity, error) {
	var rows []schemas.Build
	if err := r.db.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	builds := make([]*entities.BuildEntity, 0, len(rows))
	for i := range rows {
		b, err := buildToEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, nil
}

func buildToEntity(row *schemas.Build) (*entities.BuildEntity, error) {
	var sets []string
	if len(row.OptionalSets) > 0 {
		if err := json.Unmarshal(row.OptionalSets, &sets); err != nil {
			return nil, err
		}
	}
	return &entities.BuildEntity{
		ID:           row.ID,
		Repo:         row.Repo,
		Branch:       row.Branch,
		PRNumber:     row.PRNumber,
		OptionalSets: sets,
		Status:       row.Status,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}
