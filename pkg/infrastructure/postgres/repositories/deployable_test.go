package repositories

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/infrastructure/postgres/schemas"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "preview.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&schemas.Build{},
		&schemas.Deployable{},
		&schemas.Deploy{},
	))
	return db
}

func testDeployable(buildID uuid.UUID, name string) *entities.DeployableEntity {
	return &entities.DeployableEntity{
		ID:      uuid.New(),
		BuildID: buildID,
		Name:    name,
		Type:    entities.SourceTypeDockerfile,
		Builder: entities.BuilderBuildKit,
		Repo:    "acme/app",
		Branch:  "feature/login",
	}
}

func TestReplaceForBuildSwapsSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeployablePostgresRepository(db)

	buildID := uuid.New()
	require.NoError(t, db.Create(&schemas.Build{
		ID: buildID, Repo: "acme/app", Branch: "feature/login",
		Status: entities.BuildStatusPending,
	}).Error)

	first := []*entities.DeployableEntity{
		testDeployable(buildID, "api"),
		testDeployable(buildID, "db"),
	}
	require.NoError(t, repo.ReplaceForBuild(buildID, first))

	second := []*entities.DeployableEntity{testDeployable(buildID, "api")}
	require.NoError(t, repo.ReplaceForBuild(buildID, second))

	rows, err := repo.GetByBuildID(buildID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, second[0].ID, rows[0].ID)
}

// A re-trigger resolves the build again while the first attempt's deploy
// rows are still around. Replacing the deployable set must not be blocked
// by those rows; the registrar repoints deployable_id afterwards.
func TestReplaceForBuildWithExistingDeploys(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeployablePostgresRepository(db)
	deploys := NewDeployPostgresRepository(db)

	buildID := uuid.New()
	require.NoError(t, db.Create(&schemas.Build{
		ID: buildID, Repo: "acme/app", Branch: "feature/login",
		Status: entities.BuildStatusPending,
	}).Error)

	first := []*entities.DeployableEntity{testDeployable(buildID, "api")}
	require.NoError(t, repo.ReplaceForBuild(buildID, first))

	id := entities.DeployUUID("api", buildID)
	require.NoError(t, deploys.CreateDeploy(&entities.DeployEntity{
		UUID:         id,
		DeployableID: first[0].ID,
		BuildID:      buildID,
		Status:       entities.DeployStatusDeployed,
		Active:       true,
	}))

	second := []*entities.DeployableEntity{testDeployable(buildID, "api")}
	require.NoError(t, repo.ReplaceForBuild(buildID, second))

	require.NoError(t, deploys.PatchIdentity(id, map[string]interface{}{
		"deployable_id": second[0].ID,
	}))

	deploy, err := deploys.GetByUUID(id)
	require.NoError(t, err)
	require.NotNil(t, deploy)
	assert.Equal(t, second[0].ID, deploy.DeployableID)
}
