package buildengine

import (
	"fmt"
	"strings"

	"github.com/previewlabs/preview-backend/internal/utils"
)

// ImageTag computes the deterministic tag for one build: short revision
// plus a digest over the merged env and build-time variables. Identical
// inputs always land on the same tag, which is what makes the tag-exists
// skip safe.
func ImageTag(revision string, env, buildArgs map[string]string) string {
	return fmt.Sprintf("%s-%s", utils.ShortSHA(revision), utils.HashEnv(env, buildArgs)[:10])
}

// InitImageTag is the tag of the optional init image built alongside the
// main one.
func InitImageTag(tag string) string {
	return "init-" + tag
}

// CacheRef derives the layer-cache reference for one service. The service
// name suffix keeps two services from clobbering each other's cache on
// registries that are not isolated per repository.
func CacheRef(cacheRegistry, image, service string) string {
	return fmt.Sprintf("%s/%s/cache-%s",
		strings.TrimSuffix(cacheRegistry, "/"), repoPath(image), service)
}

// repoPath strips the registry host from an image reference, leaving the
// repository path.
func repoPath(image string) string {
	parts := strings.SplitN(image, "/", 2)
	if len(parts) == 2 && strings.ContainsAny(parts[0], ".:") {
		return parts[1]
	}
	return image
}

// registryHost returns the registry hostname of an image reference, or an
// empty string for a bare Docker Hub path.
func registryHost(image string) string {
	parts := strings.SplitN(image, "/", 2)
	if len(parts) == 2 && strings.ContainsAny(parts[0], ".:") {
		return parts[0]
	}
	return ""
}
