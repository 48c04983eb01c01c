package repositories

import (
	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/postgres/schemas"

	"gorm.io/gorm"
)

type OverridePostgresRepository struct {
	db *gorm.DB
}

func NewOverridePostgresRepository(db *gorm.DB) *OverridePostgresRepository {
	return &OverridePostgresRepository{db: db}
}

func (r *OverridePostgresRepository) GetActiveOverrides(repo string, prNumber int) ([]*entities.BranchOverride, error) {
	var rows []schemas.BranchOverride
	err := r.db.Where("repo = ? AND pr_number = ? AND active = true", repo, prNumber).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	overrides := make([]*entities.BranchOverride, 0, len(rows))
	for i := range rows {
		overrides = append(overrides, &entities.BranchOverride{
			ServiceName: rows[i].ServiceName,
			Branch:      rows[i].Branch,
			Tag:         rows[i].Tag,
			Enabled:     rows[i].Enabled,
		})
	}
	return overrides, nil
}

func (r *OverridePostgresRepository) CreateOverride(repo string, prNumber int, o *entities.BranchOverride) error {
	row := schemas.BranchOverride{
		Repo:        repo,
		PRNumber:    prNumber,
		ServiceName: o.ServiceName,
		Branch:      o.Branch,
		Tag:         o.Tag,
		Enabled:     o.Enabled,
		Active:      true,
	}
	return r.db.Create(&row).Error
}
