package schemas

import (
	"time"
)

// BranchOverride is a comment-driven per-service override (branch, tag or
// enablement) scoped to one repo+PR. Applied by the resolver after the
// template/declarative merge.
type BranchOverride struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Repo        string    `gorm:"not null;index:idx_overrides_repo_pr;column:repo"`
	PRNumber    int       `gorm:"not null;index:idx_overrides_repo_pr;column:pr_number"`
	ServiceName string    `gorm:"not null;column:service_name"`
	Branch      string    `gorm:"column:branch"`
	Tag         string    `gorm:"column:tag"`
	Enabled     *bool     `gorm:"column:enabled"`
	Active      bool      `gorm:"not null;default:true;column:active"`
	CreatedAt   time.Time `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;column:updated_at"`
}

func (BranchOverride) TableName() string {
	return "branch_overrides"
}
