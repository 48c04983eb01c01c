package buildengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageTagDeterministic(t *testing.T) {
	env := map[string]string{"A": "1", "B": "2"}
	args := map[string]string{"PREVIEW_BUILD": "f47ac10b"}

	a := ImageTag("abc1234def56789", env, args)
	b := ImageTag("abc1234def56789", map[string]string{"B": "2", "A": "1"}, args)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "abc1234-")
}

func TestImageTagChangesWithInputs(t *testing.T) {
	env := map[string]string{"A": "1"}
	base := ImageTag("abc1234def56789", env, nil)

	assert.NotEqual(t, base, ImageTag("fff9999def56789", env, nil))
	assert.NotEqual(t, base, ImageTag("abc1234def56789", map[string]string{"A": "2"}, nil))
}

func TestInitImageTag(t *testing.T) {
	assert.Equal(t, "init-abc1234-0123456789", InitImageTag("abc1234-0123456789"))
}

func TestCacheRefIsolatesServices(t *testing.T) {
	a := CacheRef("registry.acme.dev/cache", "registry.acme.dev/app/shared", "api")
	b := CacheRef("registry.acme.dev/cache", "registry.acme.dev/app/shared", "worker")

	// Two services pushing to the same repository must not share a cache
	// reference.
	assert.NotEqual(t, a, b)
	assert.Equal(t, "registry.acme.dev/cache/app/shared/cache-api", a)
}

func TestCacheRefTrimsTrailingSlash(t *testing.T) {
	ref := CacheRef("registry.acme.dev/cache/", "acme/app", "api")
	assert.Equal(t, "registry.acme.dev/cache/acme/app/cache-api", ref)
}

func TestRepoPathAndRegistryHost(t *testing.T) {
	assert.Equal(t, "app/api", repoPath("registry.acme.dev/app/api"))
	assert.Equal(t, "registry.acme.dev", registryHost("registry.acme.dev/app/api"))

	// Bare Docker Hub references have no registry component.
	assert.Equal(t, "acme/api", repoPath("acme/api"))
	assert.Equal(t, "", registryHost("acme/api"))

	assert.Equal(t, "app/api", repoPath("localhost:5000/app/api"))
	assert.Equal(t, "localhost:5000", registryHost("localhost:5000/app/api"))
}
