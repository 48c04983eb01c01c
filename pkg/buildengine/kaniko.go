package buildengine

import (
	"fmt"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/globalconfig"
)

// NewKanikoEngine builds with kaniko running inside the job pod.
func NewKanikoEngine(jobs ClusterJobRunner, registry RegistryClient, cfg *globalconfig.Provider) Engine {
	return &nativeEngine{
		builder:  entities.BuilderKaniko,
		jobs:     jobs,
		registry: registry,
		cfg:      cfg,
		render:   kanikoContainer,
	}
}

func kanikoContainer(
	d *entities.DeployableEntity,
	opts BuildOptions,
	dockerfile, destination, cacheRef, authToken string,
	bc globalconfig.BuildConfig,
) ContainerSpec {
	args := []string{
		"--context=dir://" + workspaceDir,
		"--dockerfile=" + dockerfile,
		"--destination=" + destination,
		"--cache=true",
		"--cache-repo=" + cacheRef,
	}
	for k, v := range opts.BuildArgs {
		args = append(args, fmt.Sprintf("--build-arg=%s=%s", k, v))
	}
	env := map[string]string{}
	if authToken != "" {
		env["REGISTRY_TOKEN"] = authToken
	}
	return ContainerSpec{
		Name:      "build",
		Image:     bc.KanikoImage,
		Args:      args,
		Env:       env,
		Resources: buildResources(d, bc),
	}
}
