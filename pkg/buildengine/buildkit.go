package buildengine

import (
	"fmt"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/globalconfig"
)

// NewBuildKitEngine builds with buildctl against a shared buildkitd.
func NewBuildKitEngine(jobs ClusterJobRunner, registry RegistryClient, cfg *globalconfig.Provider) Engine {
	return &nativeEngine{
		builder:  entities.BuilderBuildKit,
		jobs:     jobs,
		registry: registry,
		cfg:      cfg,
		render:   buildkitContainer,
	}
}

func buildkitContainer(
	d *entities.DeployableEntity,
	opts BuildOptions,
	dockerfile, destination, cacheRef, authToken string,
	bc globalconfig.BuildConfig,
) ContainerSpec {
	args := []string{
		"build",
		"--frontend", "dockerfile.v0",
		"--local", "context=" + workspaceDir,
		"--local", "dockerfile=" + workspaceDir,
		"--opt", "filename=" + dockerfile,
		"--output", fmt.Sprintf("type=image,name=%s,push=true", destination),
		"--export-cache", fmt.Sprintf("type=registry,ref=%s", cacheRef),
		"--import-cache", fmt.Sprintf("type=registry,ref=%s", cacheRef),
	}
	for k, v := range opts.BuildArgs {
		args = append(args, "--opt", fmt.Sprintf("build-arg:%s=%s", k, v))
	}
	env := map[string]string{}
	if bc.BuilderEndpoint != "" {
		env["BUILDKIT_HOST"] = bc.BuilderEndpoint
	}
	if authToken != "" {
		env["REGISTRY_TOKEN"] = authToken
	}
	return ContainerSpec{
		Name:      "build",
		Image:     bc.BuildKitImage,
		Command:   []string{"buildctl"},
		Args:      args,
		Env:       env,
		Resources: buildResources(d, bc),
	}
}
