package globalconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProviderDefaults(t *testing.T) {
	p := NewProvider()

	build := p.Build()
	assert.Equal(t, 25*time.Minute, build.JobTimeout)
	assert.Equal(t, 10*time.Second, build.DependencyPollInterval)
	assert.Equal(t, 90, build.DependencyPollAttempts)
	assert.Equal(t, 15*time.Second, build.RemoteCIPollInterval)

	cluster := p.Cluster()
	assert.Equal(t, "preview-builds", cluster.Namespace)
	assert.Equal(t, "preview.example.com", cluster.BaseDomain)
	assert.Equal(t, "preview.dev", cluster.LabelPrefix)
}

func TestProviderRefreshPicksUpEnvironment(t *testing.T) {
	p := NewProvider()

	t.Setenv("BUILD_JOB_TIMEOUT", "5m")
	t.Setenv("DEPENDENCY_POLL_ATTEMPTS", "3")
	t.Setenv("PREVIEW_BASE_DOMAIN", "pr.acme.dev")
	p.Refresh()

	assert.Equal(t, 5*time.Minute, p.Build().JobTimeout)
	assert.Equal(t, 3, p.Build().DependencyPollAttempts)
	assert.Equal(t, "pr.acme.dev", p.Cluster().BaseDomain)
}

func TestProviderIgnoresMalformedValues(t *testing.T) {
	t.Setenv("BUILD_JOB_TIMEOUT", "not-a-duration")
	t.Setenv("DEPENDENCY_POLL_ATTEMPTS", "many")

	p := NewProvider()
	assert.Equal(t, 25*time.Minute, p.Build().JobTimeout)
	assert.Equal(t, 90, p.Build().DependencyPollAttempts)
}
