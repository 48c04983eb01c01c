package repositories

import (
	"encoding/json"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/postgres/schemas"

	"gorm.io/gorm"
)

type TemplatePostgresRepository struct {
	db *gorm.DB
}

func NewTemplatePostgresRepository(db *gorm.DB) *TemplatePostgresRepository {
	return &TemplatePostgresRepository{db: db}
}

// GetAllTemplates returns every template row. Set selection and dependent
// expansion happen in the resolver, which needs to see rows outside the
// chosen sets to pull in one level of dependents.
func (r *TemplatePostgresRepository) GetAllTemplates() ([]*entities.ServiceTemplate, error) {
	var rows []schemas.ServiceTemplate
	if err := r.db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	templates := make([]*entities.ServiceTemplate, 0, len(rows))
	for i := range rows {
		t, err := templateToEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func templateToEntity(row *schemas.ServiceTemplate) (*entities.ServiceTemplate, error) {
	t := &entities.ServiceTemplate{
		Name:           row.Name,
		SetName:        row.SetName,
		Type:           row.Type,
		Builder:        row.Builder,
		Repo:           row.Repo,
		Branch:         row.Branch,
		Image:          row.Image,
		Dockerfile:     row.Dockerfile,
		InitDockerfile: row.InitDockerfile,
		DependsOn:      row.DependsOn,
		Port:           row.Port,
	}
	if len(row.Env) > 0 {
		if err := json.Unmarshal(row.Env, &t.Env); err != nil {
			return nil, err
		}
	}
	if len(row.Bindings) > 0 {
		if err := json.Unmarshal(row.Bindings, &t.Bindings); err != nil {
			return nil, err
		}
	}
	if len(row.Resources) > 0 {
		if err := json.Unmarshal(row.Resources, &t.Resources); err != nil {
			return nil, err
		}
	}
	if len(row.Probe) > 0 {
		if err := json.Unmarshal(row.Probe, &t.Probe); err != nil {
			return nil, err
		}
	}
	return t, nil
}
