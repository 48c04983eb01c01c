package buildengine

import (
	"context"
	"fmt"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
)

// imageEngine handles services that ship a pre-built image: nothing to
// build, the deploy just pins the tag.
type imageEngine struct{}

func NewImageEngine() Engine {
	return &imageEngine{}
}

func (e *imageEngine) Supports(t entities.SourceType, b entities.Builder) bool {
	return t == entities.SourceTypeImage && b == ""
}

func (e *imageEngine) Build(
	_ context.Context,
	deploy *entities.DeployEntity,
	opts BuildOptions,
) (*entities.BuildAttemptResult, error) {
	d := deploy.Deployable
	tag := opts.Tag
	if tag == "" {
		tag = "latest"
	}
	return &entities.BuildAttemptResult{
		Success: true,
		Logs:    fmt.Sprintf("using prebuilt image %s:%s", d.Image, tag),
	}, nil
}

// noopEngine handles external hosts and config-only services, which have
// nothing to build at all.
type noopEngine struct{}

func NewNoopEngine() Engine {
	return &noopEngine{}
}

func (e *noopEngine) Supports(t entities.SourceType, b entities.Builder) bool {
	return (t == entities.SourceTypeExternal || t == entities.SourceTypeConfig) && b == ""
}

func (e *noopEngine) Build(
	_ context.Context,
	deploy *entities.DeployEntity,
	_ BuildOptions,
) (*entities.BuildAttemptResult, error) {
	return &entities.BuildAttemptResult{
		Success: true,
		Logs:    fmt.Sprintf("nothing to build for %s service", deploy.Deployable.Type),
	}, nil
}
