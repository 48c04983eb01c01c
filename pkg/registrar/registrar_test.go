package registrar

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/globalconfig"
)

type fakeDeployRepo struct {
	deploys    map[string]*entities.DeployEntity
	created    int
	patched    int
	lastFields map[string]interface{}
}

func newFakeDeployRepo() *fakeDeployRepo {
	return &fakeDeployRepo{deploys: map[string]*entities.DeployEntity{}}
}

func (f *fakeDeployRepo) GetByUUID(id string) (*entities.DeployEntity, error) {
	return f.deploys[id], nil
}

func (f *fakeDeployRepo) CreateDeploy(deploy *entities.DeployEntity) error {
	f.created++
	copied := *deploy
	f.deploys[deploy.UUID] = &copied
	return nil
}

func (f *fakeDeployRepo) PatchIdentity(id string, fields map[string]interface{}) error {
	f.patched++
	f.lastFields = fields
	d := f.deploys[id]
	if branch, ok := fields["branch"].(string); ok {
		d.Branch = branch
	}
	if tag, ok := fields["tag"].(string); ok {
		d.Tag = tag
	}
	return nil
}

func (f *fakeDeployRepo) CountByBuildID(uuid.UUID) (int64, error) {
	return int64(len(f.deploys)), nil
}

func deployable(buildID uuid.UUID, name string) *entities.DeployableEntity {
	return &entities.DeployableEntity{
		ID:      uuid.New(),
		BuildID: buildID,
		Name:    name,
		Type:    entities.SourceTypeDockerfile,
		Builder: entities.BuilderBuildKit,
		Repo:    "acme/app",
		Branch:  "feature/login",
		Image:   "registry.acme.dev/app/" + name,
	}
}

func TestUpsertCreatesDeterministicDeploys(t *testing.T) {
	repo := newFakeDeployRepo()
	reg := NewRegistrar(repo, globalconfig.NewProvider())

	build := &entities.BuildEntity{ID: uuid.New(), Repo: "acme/app", Branch: "feature/login"}
	deployables := map[string]*entities.DeployableEntity{
		"api": deployable(build.ID, "api"),
		"db":  deployable(build.ID, "db"),
	}

	deploys, err := reg.Upsert(deployables, build)
	require.NoError(t, err)
	require.Len(t, deploys, 2)

	// Sorted by name, identity derived from (name, build).
	assert.Equal(t, entities.DeployUUID("api", build.ID), deploys[0].UUID)
	assert.Equal(t, entities.DeployUUID("db", build.ID), deploys[1].UUID)
	assert.Equal(t, entities.DeployStatusQueued, deploys[0].Status)
	assert.True(t, deploys[0].Active)
	assert.Contains(t, deploys[0].PublicURL, "https://api-")
	assert.Contains(t, deploys[0].InternalHost, ".svc.cluster.local")
	assert.Equal(t, 2, repo.created)
}

func TestUpsertAttachesBackReferences(t *testing.T) {
	repo := newFakeDeployRepo()
	reg := NewRegistrar(repo, globalconfig.NewProvider())

	build := &entities.BuildEntity{ID: uuid.New(), Repo: "acme/app"}
	d := deployable(build.ID, "api")

	deploys, err := reg.Upsert(map[string]*entities.DeployableEntity{"api": d}, build)
	require.NoError(t, err)
	assert.Same(t, d, deploys[0].Deployable)
	assert.Same(t, build, deploys[0].Build)
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := newFakeDeployRepo()
	reg := NewRegistrar(repo, globalconfig.NewProvider())

	build := &entities.BuildEntity{ID: uuid.New(), Repo: "acme/app"}
	deployables := map[string]*entities.DeployableEntity{"api": deployable(build.ID, "api")}

	_, err := reg.Upsert(deployables, build)
	require.NoError(t, err)

	// Second resolution of the same attempt patches identity fields
	// instead of creating a duplicate row.
	deployables["api"].Branch = "hotfix"
	deploys, err := reg.Upsert(deployables, build)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.created)
	assert.Equal(t, 1, repo.patched)
	assert.Equal(t, "hotfix", deploys[0].Branch)
	assert.Len(t, repo.deploys, 1)
}

func TestUpsertCarriesConfigError(t *testing.T) {
	repo := newFakeDeployRepo()
	reg := NewRegistrar(repo, globalconfig.NewProvider())

	build := &entities.BuildEntity{ID: uuid.New(), Repo: "acme/app"}
	d := deployable(build.ID, "api")
	d.Status = entities.DeployStatusConfigError
	d.StatusReason = "unknown service type \"wasm\""

	deploys, err := reg.Upsert(map[string]*entities.DeployableEntity{"api": d}, build)
	require.NoError(t, err)
	assert.Equal(t, entities.DeployStatusConfigError, deploys[0].Status)
	assert.Equal(t, d.StatusReason, deploys[0].StatusReason)
}

func TestUpsertKeepsTagOverride(t *testing.T) {
	repo := newFakeDeployRepo()
	reg := NewRegistrar(repo, globalconfig.NewProvider())

	build := &entities.BuildEntity{ID: uuid.New(), Repo: "acme/app"}
	d := deployable(build.ID, "api")
	d.TagOverride = "v2.0.0"

	deploys, err := reg.Upsert(map[string]*entities.DeployableEntity{"api": d}, build)
	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", deploys[0].Tag)
}

func TestUpsertReTriggerPreservesBuiltTag(t *testing.T) {
	repo := newFakeDeployRepo()
	reg := NewRegistrar(repo, globalconfig.NewProvider())

	build := &entities.BuildEntity{ID: uuid.New(), Repo: "acme/app"}
	d := deployable(build.ID, "api")

	_, err := reg.Upsert(map[string]*entities.DeployableEntity{"api": d}, build)
	require.NoError(t, err)

	// A completed attempt stamps the tag it built.
	id := entities.DeployUUID("api", build.ID)
	repo.deploys[id].Tag = "abc1234-deadbeef00"

	// Re-trigger without an override must not touch the persisted tag.
	deploys, err := reg.Upsert(map[string]*entities.DeployableEntity{"api": d}, build)
	require.NoError(t, err)
	assert.NotContains(t, repo.lastFields, "tag")
	assert.Equal(t, "abc1234-deadbeef00", repo.deploys[id].Tag)
	assert.Equal(t, "abc1234-deadbeef00", deploys[0].Tag)
}
