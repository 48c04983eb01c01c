package resolver

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
)

type fakeTemplates struct {
	templates []*entities.ServiceTemplate
	err       error
}

func (f *fakeTemplates) GetAllTemplates() ([]*entities.ServiceTemplate, error) {
	return f.templates, f.err
}

type fakeOverrides struct {
	overrides []*entities.BranchOverride
	err       error
}

func (f *fakeOverrides) GetActiveOverrides(string, int) ([]*entities.BranchOverride, error) {
	return f.overrides, f.err
}

type fakeDeployables struct {
	replaced []*entities.DeployableEntity
	err      error
}

func (f *fakeDeployables) ReplaceForBuild(_ uuid.UUID, deployables []*entities.DeployableEntity) error {
	f.replaced = deployables
	return f.err
}

type fakeSCM struct {
	// keyed by "repo@branch"
	files map[string][]byte
	err   error
}

func (f *fakeSCM) FetchDeclarativeConfig(_ context.Context, repo, branch string) ([]byte, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	data, ok := f.files[repo+"@"+branch]
	return data, ok, nil
}

func testBuild() *entities.BuildEntity {
	return &entities.BuildEntity{
		ID:       uuid.New(),
		Repo:     "acme/app",
		Branch:   "feature/login",
		PRNumber: 42,
	}
}

func newTestResolver(
	templates []*entities.ServiceTemplate,
	overrides []*entities.BranchOverride,
	scm *fakeSCM,
) (*Resolver, *fakeDeployables) {
	if scm == nil {
		scm = &fakeSCM{}
	}
	store := &fakeDeployables{}
	r := NewResolver(
		&fakeTemplates{templates: templates},
		&fakeOverrides{overrides: overrides},
		store,
		scm,
	)
	return r, store
}

func TestResolveSelectsDefaultAndOptionalSets(t *testing.T) {
	templates := []*entities.ServiceTemplate{
		{Name: "api", Type: entities.SourceTypeDockerfile, Dockerfile: "Dockerfile"},
		{Name: "redis", SetName: "cache", Type: entities.SourceTypeImage, Image: "redis"},
		{Name: "warehouse", SetName: "analytics", Type: entities.SourceTypeImage, Image: "wh"},
	}
	r, _ := newTestResolver(templates, nil, nil)

	build := testBuild()
	build.OptionalSets = []string{"cache"}
	result, err := r.Resolve(context.Background(), build)
	require.NoError(t, err)

	assert.Contains(t, result, "api")
	assert.Contains(t, result, "redis")
	assert.NotContains(t, result, "warehouse")
}

func TestResolveExpandsOneLevelOfDependents(t *testing.T) {
	templates := []*entities.ServiceTemplate{
		{Name: "api", Type: entities.SourceTypeDockerfile, Dockerfile: "Dockerfile"},
		{Name: "worker", SetName: "jobs", Type: entities.SourceTypeImage, Image: "w", DependsOn: "api"},
		{Name: "scheduler", SetName: "jobs", Type: entities.SourceTypeImage, Image: "s", DependsOn: "worker"},
	}
	r, _ := newTestResolver(templates, nil, nil)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)

	// worker depends on a selected service and is pulled in; scheduler
	// depends on worker, one level deeper, and is not.
	assert.Contains(t, result, "worker")
	assert.NotContains(t, result, "scheduler")
}

func TestResolvePRRepoServicesBuildTheBranch(t *testing.T) {
	templates := []*entities.ServiceTemplate{
		{Name: "api", Type: entities.SourceTypeDockerfile, Dockerfile: "Dockerfile", Branch: "main"},
		{Name: "upstream", Type: entities.SourceTypeDockerfile, Dockerfile: "Dockerfile",
			Repo: "acme/other", Branch: "main"},
	}
	r, _ := newTestResolver(templates, nil, nil)

	build := testBuild()
	result, err := r.Resolve(context.Background(), build)
	require.NoError(t, err)

	assert.Equal(t, build.Repo, result["api"].Repo)
	assert.Equal(t, build.Branch, result["api"].Branch)
	assert.Equal(t, "acme/other", result["upstream"].Repo)
	assert.Equal(t, "main", result["upstream"].Branch)
}

func TestResolveDeclarativeReplacesAttributesAndMergesEnv(t *testing.T) {
	templates := []*entities.ServiceTemplate{
		{
			Name:       "api",
			Type:       entities.SourceTypeDockerfile,
			Dockerfile: "Dockerfile",
			Port:       8080,
			Env:        map[string]string{"LOG_LEVEL": "info", "FEATURE_X": "off"},
		},
	}
	scm := &fakeSCM{files: map[string][]byte{
		"acme/app@feature/login": []byte(`
services:
  api:
    dockerfile: build/Dockerfile
    port: 9000
    env:
      FEATURE_X: "on"
      NEW_KEY: "1"
`),
	}}
	r, _ := newTestResolver(templates, nil, scm)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)

	api := result["api"]
	assert.Equal(t, "build/Dockerfile", api.Dockerfile)
	assert.Equal(t, 9000, api.Port)
	// Env is the only shallow-merged attribute: baseline keys survive,
	// declarative values win on conflict.
	assert.Equal(t, map[string]string{
		"LOG_LEVEL": "info",
		"FEATURE_X": "on",
		"NEW_KEY":   "1",
	}, api.Env)
}

func TestResolveDegradesToBaselineOnFetchError(t *testing.T) {
	templates := []*entities.ServiceTemplate{
		{Name: "api", Type: entities.SourceTypeDockerfile, Dockerfile: "Dockerfile"},
	}
	scm := &fakeSCM{err: fmt.Errorf("github unavailable")}
	r, _ := newTestResolver(templates, nil, scm)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Empty(t, result["api"].Status)
}

func TestResolveDegradesToBaselineOnMalformedConfig(t *testing.T) {
	templates := []*entities.ServiceTemplate{
		{Name: "api", Type: entities.SourceTypeDockerfile, Dockerfile: "Dockerfile"},
	}
	scm := &fakeSCM{files: map[string][]byte{
		"acme/app@feature/login": []byte("services: [not, a, map]"),
	}}
	r, _ := newTestResolver(templates, nil, scm)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "Dockerfile", result["api"].Dockerfile)
}

func TestResolveUnknownTypeIsConfigError(t *testing.T) {
	scm := &fakeSCM{files: map[string][]byte{
		"acme/app@feature/login": []byte(`
services:
  api:
    type: wasm
`),
	}}
	r, _ := newTestResolver(nil, nil, scm)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)

	api := result["api"]
	assert.Equal(t, entities.DeployStatusConfigError, api.Status)
	assert.Contains(t, api.StatusReason, "wasm")
}

func TestResolveInfersSourceType(t *testing.T) {
	scm := &fakeSCM{files: map[string][]byte{
		"acme/app@feature/login": []byte(`
services:
  api:
    dockerfile: Dockerfile
  redis:
    image: redis:7
  settings: {}
`),
	}}
	r, _ := newTestResolver(nil, nil, scm)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)

	assert.Equal(t, entities.SourceTypeDockerfile, result["api"].Type)
	assert.Equal(t, entities.BuilderBuildKit, result["api"].Builder)
	assert.Equal(t, entities.SourceTypeImage, result["redis"].Type)
	assert.Equal(t, entities.Builder(""), result["redis"].Builder)
	assert.Equal(t, entities.SourceTypeConfig, result["settings"].Type)
}

func TestResolveKeepsExplicitBuilder(t *testing.T) {
	scm := &fakeSCM{files: map[string][]byte{
		"acme/app@feature/login": []byte(`
services:
  api:
    dockerfile: Dockerfile
    builder: kaniko
`),
	}}
	r, _ := newTestResolver(nil, nil, scm)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)
	assert.Equal(t, entities.BuilderKaniko, result["api"].Builder)
}

func TestResolveRequiresSatisfiedInSameFile(t *testing.T) {
	scm := &fakeSCM{files: map[string][]byte{
		"acme/app@feature/login": []byte(`
services:
  api:
    dockerfile: Dockerfile
    requires: [db]
  db:
    image: postgres:16
`),
	}}
	r, _ := newTestResolver(nil, nil, scm)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)
	assert.Empty(t, result["api"].Status)
	assert.Contains(t, result, "db")
}

func TestResolveRequiresPullsOneLevelFromUpstreamRepo(t *testing.T) {
	scm := &fakeSCM{files: map[string][]byte{
		"acme/app@feature/login": []byte(`
services:
  gateway:
    repo: acme/gateway
    branch: develop
    dockerfile: Dockerfile
    requires: [auth]
`),
		"acme/gateway@develop": []byte(`
services:
  auth:
    image: acme/auth:stable
    requires: [vault]
`),
	}}
	r, _ := newTestResolver(nil, nil, scm)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)

	// auth comes in from the upstream file and belongs to the upstream
	// repo; its own requires entry (vault) is not chased further.
	require.Contains(t, result, "auth")
	assert.Equal(t, "acme/gateway", result["auth"].Repo)
	assert.Equal(t, "develop", result["auth"].Branch)
	assert.NotContains(t, result, "vault")
	assert.Empty(t, result["gateway"].Status)
}

func TestResolveUnresolvableRequireIsConfigError(t *testing.T) {
	scm := &fakeSCM{files: map[string][]byte{
		"acme/app@feature/login": []byte(`
services:
  api:
    dockerfile: Dockerfile
    requires: [ghost]
`),
	}}
	r, _ := newTestResolver(nil, nil, scm)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)

	api := result["api"]
	assert.Equal(t, entities.DeployStatusConfigError, api.Status)
	assert.Contains(t, api.StatusReason, "ghost")
}

func TestResolveOverrideUnknownServiceIsNoOp(t *testing.T) {
	templates := []*entities.ServiceTemplate{
		{Name: "api", Type: entities.SourceTypeDockerfile, Dockerfile: "Dockerfile"},
	}
	overrides := []*entities.BranchOverride{
		{ServiceName: "ghost", Branch: "other"},
	}
	r, _ := newTestResolver(templates, overrides, nil)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Contains(t, result, "api")
}

func TestResolveOverrideDisablesService(t *testing.T) {
	templates := []*entities.ServiceTemplate{
		{Name: "api", Type: entities.SourceTypeDockerfile, Dockerfile: "Dockerfile"},
		{Name: "worker", Type: entities.SourceTypeImage, Image: "w"},
	}
	disabled := false
	overrides := []*entities.BranchOverride{
		{ServiceName: "worker", Enabled: &disabled},
	}
	r, store := newTestResolver(templates, overrides, nil)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)
	assert.NotContains(t, result, "worker")
	assert.Len(t, store.replaced, 1)
}

func TestResolveOverrideSetsBranchAndTag(t *testing.T) {
	templates := []*entities.ServiceTemplate{
		{Name: "api", Type: entities.SourceTypeDockerfile, Dockerfile: "Dockerfile"},
	}
	overrides := []*entities.BranchOverride{
		{ServiceName: "api", Branch: "hotfix", Tag: "v1.2.3"},
	}
	r, _ := newTestResolver(templates, overrides, nil)

	result, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)
	assert.Equal(t, "hotfix", result["api"].Branch)
	assert.Equal(t, "v1.2.3", result["api"].TagOverride)
}

func TestResolvePersistsSortedDeployables(t *testing.T) {
	templates := []*entities.ServiceTemplate{
		{Name: "zeta", Type: entities.SourceTypeImage, Image: "z"},
		{Name: "alpha", Type: entities.SourceTypeImage, Image: "a"},
	}
	r, store := newTestResolver(templates, nil, nil)

	_, err := r.Resolve(context.Background(), testBuild())
	require.NoError(t, err)

	require.Len(t, store.replaced, 2)
	assert.Equal(t, "alpha", store.replaced[0].Name)
	assert.Equal(t, "zeta", store.replaced[1].Name)
}

func TestResolveFailsWhenTemplatesUnavailable(t *testing.T) {
	r := NewResolver(
		&fakeTemplates{err: fmt.Errorf("db down")},
		&fakeOverrides{},
		&fakeDeployables{},
		&fakeSCM{},
	)
	_, err := r.Resolve(context.Background(), testBuild())
	assert.Error(t, err)
}

func TestParseBranchConfigRequiresServicesBlock(t *testing.T) {
	_, err := ParseBranchConfig([]byte("version: 1"))
	assert.Error(t, err)

	_, err = ParseBranchConfig([]byte("services:\n  api: {}"))
	assert.NoError(t, err)
}
