package schemas

import (
	"time"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"

	"gorm.io/datatypes"
)

// ServiceTemplate is one row of the environment template: the
// database-defined baseline attributes for a service. Rows with an empty
// SetName belong to the default set; named sets are opted into per build.
type ServiceTemplate struct {
	ID             int64               `gorm:"primaryKey;autoIncrement;column:id"`
	Name           string              `gorm:"not null;uniqueIndex;column:name"`
	SetName        string              `gorm:"column:set_name"`
	Type           entities.SourceType `gorm:"not null;column:type"`
	Builder        entities.Builder    `gorm:"column:builder"`
	Repo           string              `gorm:"column:repo"`
	Branch         string              `gorm:"column:branch"`
	Image          string              `gorm:"column:image"`
	Dockerfile     string              `gorm:"column:dockerfile"`
	InitDockerfile string              `gorm:"column:init_dockerfile"`
	DependsOn      string              `gorm:"column:depends_on"`
	Env            datatypes.JSON      `gorm:"type:jsonb;column:env"`
	Bindings       datatypes.JSON      `gorm:"type:jsonb;column:bindings"`
	Resources      datatypes.JSON      `gorm:"type:jsonb;column:resources"`
	Probe          datatypes.JSON      `gorm:"type:jsonb;column:probe"`
	Port           int                 `gorm:"column:port"`
	CreatedAt      time.Time           `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime;column:updated_at"`
}

func (ServiceTemplate) TableName() string {
	return "service_templates"
}
