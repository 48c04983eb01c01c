package schemas

import (
	"time"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"

	"github.com/google/uuid"
)

type Deploy struct {
	UUID string `gorm:"primaryKey;column:uuid"`
	// deployable_id is a plain column, not an enforced reference. The
	// deployable set of a build is replaced wholesale on every resolution
	// while deploy rows survive, so a foreign key could never hold; the
	// registrar repoints the column after each resolution instead.
	DeployableID uuid.UUID             `gorm:"type:uuid;not null;column:deployable_id"`
	BuildID      uuid.UUID             `gorm:"type:uuid;not null;index;column:build_id"`
	Build        Build                 `gorm:"foreignKey:BuildID"`
	Status       entities.DeployStatus `gorm:"not null;column:status"`
	StatusReason string                `gorm:"column:status_reason"`
	Active       bool                  `gorm:"not null;default:true;column:active"`
	RunUUID      string                `gorm:"column:run_uuid"`
	Branch       string                `gorm:"column:branch"`
	Tag          string                `gorm:"column:tag"`
	DockerImage  string                `gorm:"column:docker_image"`
	PublicURL    string                `gorm:"column:public_url"`
	InternalHost string                `gorm:"column:internal_host"`
	BuildOutput  string                `gorm:"type:text;column:build_output"`
	BuildLogsURL string                `gorm:"column:build_logs_url"`
	CreatedAt    time.Time             `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt    time.Time             `gorm:"autoUpdateTime;column:updated_at"`
}

func (Deploy) TableName() string {
	return "deploys"
}
