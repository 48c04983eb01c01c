package schemas

import (
	"time"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Build struct {
	ID           uuid.UUID            `gorm:"type:uuid;primaryKey;column:id"`
	Repo         string               `gorm:"not null;column:repo"`
	Branch       string               `gorm:"not null;column:branch"`
	PRNumber     int                  `gorm:"column:pr_number"`
	OptionalSets datatypes.JSON       `gorm:"type:jsonb;column:optional_sets"`
	Status       entities.BuildStatus `gorm:"not null;column:status"`
	CreatedAt    time.Time            `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt    time.Time            `gorm:"autoUpdateTime;column:updated_at"`
}

func (Build) TableName() string {
	return "builds"
}
