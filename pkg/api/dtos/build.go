package dtos

import "fmt"

type CreateBuildRequest struct {
	Repo         string   `json:"repo"`
	Branch       string   `json:"branch"`
	PRNumber     int      `json:"prNumber"`
	OptionalSets []string `json:"optionalSets"`
}

func (r *CreateBuildRequest) Validate() error {
	if r.Repo == "" {
		return fmt.Errorf("repo is required")
	}
	if r.Branch == "" {
		return fmt.Errorf("branch is required")
	}
	if r.PRNumber <= 0 {
		return fmt.Errorf("prNumber must be positive")
	}
	return nil
}

type CreateOverrideRequest struct {
	ServiceName string `json:"serviceName"`
	Branch      string `json:"branch"`
	Tag         string `json:"tag"`
	Enabled     *bool  `json:"enabled"`
}

func (r *CreateOverrideRequest) Validate() error {
	if r.ServiceName == "" {
		return fmt.Errorf("serviceName is required")
	}
	if r.Branch == "" && r.Tag == "" && r.Enabled == nil {
		return fmt.Errorf("override must set branch, tag or enabled")
	}
	return nil
}
