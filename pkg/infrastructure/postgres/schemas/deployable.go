package schemas

import (
	"time"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Deployable struct {
	ID             uuid.UUID             `gorm:"type:uuid;primaryKey;column:id"`
	BuildID        uuid.UUID             `gorm:"type:uuid;not null;index:idx_deployables_build_name,unique;column:build_id"`
	Build          Build                 `gorm:"foreignKey:BuildID"`
	Name           string                `gorm:"not null;index:idx_deployables_build_name,unique;column:name"`
	Type           entities.SourceType   `gorm:"not null;column:type"`
	Builder        entities.Builder      `gorm:"column:builder"`
	Repo           string                `gorm:"column:repo"`
	Branch         string                `gorm:"column:branch"`
	Image          string                `gorm:"column:image"`
	Dockerfile     string                `gorm:"column:dockerfile"`
	InitDockerfile string                `gorm:"column:init_dockerfile"`
	DependsOn      string                `gorm:"column:depends_on"`
	Requires       datatypes.JSON        `gorm:"type:jsonb;column:requires"`
	Env            datatypes.JSON        `gorm:"type:jsonb;column:env"`
	Bindings       datatypes.JSON        `gorm:"type:jsonb;column:bindings"`
	Resources      datatypes.JSON        `gorm:"type:jsonb;column:resources"`
	Probe          datatypes.JSON        `gorm:"type:jsonb;column:probe"`
	Port           int                   `gorm:"column:port"`
	Host           string                `gorm:"column:host"`
	TagOverride    string                `gorm:"column:tag_override"`
	Status         entities.DeployStatus `gorm:"column:status"`
	StatusReason   string                `gorm:"column:status_reason"`
	CreatedAt      time.Time             `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt      time.Time             `gorm:"autoUpdateTime;column:updated_at"`
}

func (Deployable) TableName() string {
	return "deployables"
}
