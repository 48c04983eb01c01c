package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ShortSHA returns the conventional 7-character abbreviation of a git
// revision. Shorter inputs are returned unchanged.
func ShortSHA(sha string) string {
	if len(sha) <= 7 {
		return sha
	}
	return sha[:7]
}

// HashEnv produces a stable hex digest over a set of key/value maps.
// Keys are sorted so insertion order never changes the digest.
func HashEnv(maps ...map[string]string) string {
	merged := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s\n", k, merged[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// PublicURL derives the externally reachable hostname for one service of
// one build attempt.
func PublicURL(serviceName string, buildID uuid.UUID, baseDomain string) string {
	return fmt.Sprintf("https://%s-%s.%s", serviceName, ShortBuildID(buildID), baseDomain)
}

// InternalHost derives the cluster-internal hostname for one service of
// one build attempt.
func InternalHost(serviceName string, buildID uuid.UUID, namespace string) string {
	return fmt.Sprintf("%s-%s.%s.svc.cluster.local", serviceName, ShortBuildID(buildID), namespace)
}

// ShortBuildID is the first UUID segment, used in hostnames and job names
// where the full UUID would blow label length limits.
func ShortBuildID(buildID uuid.UUID) string {
	return strings.SplitN(buildID.String(), "-", 2)[0]
}

// JobName builds the cluster job name for one build attempt of one service.
func JobName(serviceName string, buildID uuid.UUID) string {
	return fmt.Sprintf("build-%s-%s", serviceName, ShortBuildID(buildID))
}
