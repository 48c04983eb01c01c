package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "abc1234", ShortSHA("abc1234def5678"))
	assert.Equal(t, "abc", ShortSHA("abc"))
	assert.Equal(t, "", ShortSHA(""))
}

func TestHashEnvInsensitiveToOrder(t *testing.T) {
	a := HashEnv(map[string]string{"A": "1", "B": "2"})
	b := HashEnv(map[string]string{"B": "2", "A": "1"})
	assert.Equal(t, a, b)
}

func TestHashEnvMergesMaps(t *testing.T) {
	merged := HashEnv(map[string]string{"A": "1"}, map[string]string{"B": "2"})
	flat := HashEnv(map[string]string{"A": "1", "B": "2"})
	assert.Equal(t, flat, merged)
}

func TestHashEnvLaterMapWins(t *testing.T) {
	overridden := HashEnv(map[string]string{"A": "1"}, map[string]string{"A": "2"})
	direct := HashEnv(map[string]string{"A": "2"})
	assert.Equal(t, direct, overridden)
}

func TestHashEnvValueChangesDigest(t *testing.T) {
	a := HashEnv(map[string]string{"A": "1"})
	b := HashEnv(map[string]string{"A": "2"})
	assert.NotEqual(t, a, b)
}

func TestHostDerivation(t *testing.T) {
	buildID := uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")

	assert.Equal(t, "f47ac10b", ShortBuildID(buildID))
	assert.Equal(t, "https://api-f47ac10b.preview.example.com",
		PublicURL("api", buildID, "preview.example.com"))
	assert.Equal(t, "api-f47ac10b.preview-builds.svc.cluster.local",
		InternalHost("api", buildID, "preview-builds"))
	assert.Equal(t, "build-api-f47ac10b", JobName("api", buildID))
}
