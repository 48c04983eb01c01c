package globalconfig

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// BuildConfig is the build-defaults section: job limits, cache registry
// and builder endpoints shared by every engine.
type BuildConfig struct {
	JobTimeout             time.Duration
	DependencyPollInterval time.Duration
	DependencyPollAttempts int
	CacheRegistry          string
	BuilderEndpoint        string
	RemoteCIEndpoint       string
	RemoteCIPollInterval   time.Duration
	ManagedRegistryPattern string
	DefaultCPURequest      string
	DefaultMemoryRequest   string
	GitCloneImage          string
	KanikoImage            string
	BuildKitImage          string
}

// ClusterConfig is the cluster section: where build jobs run and how
// deployed services are addressed.
type ClusterConfig struct {
	Namespace   string
	BaseDomain  string
	LabelPrefix string
}

// Provider serves configuration sections from a single process-lifetime
// cache. Components receive a Provider at construction instead of reading
// ambient globals; Refresh replaces the whole snapshot at once.
type Provider struct {
	mu      sync.RWMutex
	build   BuildConfig
	cluster ClusterConfig
}

func NewProvider() *Provider {
	p := &Provider{}
	p.Refresh()
	return p
}

func (p *Provider) Build() BuildConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.build
}

func (p *Provider) Cluster() ClusterConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cluster
}

// Refresh reloads every section from the environment.
func (p *Provider) Refresh() {
	build := BuildConfig{
		JobTimeout:             envDuration("BUILD_JOB_TIMEOUT", 25*time.Minute),
		DependencyPollInterval: envDuration("DEPENDENCY_POLL_INTERVAL", 10*time.Second),
		DependencyPollAttempts: envInt("DEPENDENCY_POLL_ATTEMPTS", 90),
		CacheRegistry:          envString("BUILD_CACHE_REGISTRY", ""),
		BuilderEndpoint:        envString("BUILDER_ENDPOINT", ""),
		RemoteCIEndpoint:       envString("REMOTE_CI_ENDPOINT", ""),
		RemoteCIPollInterval:   envDuration("REMOTE_CI_POLL_INTERVAL", 15*time.Second),
		ManagedRegistryPattern: envString("MANAGED_REGISTRY_PATTERN", `(\.pkg\.dev|\.gcr\.io)$`),
		DefaultCPURequest:      envString("BUILD_DEFAULT_CPU_REQUEST", "500m"),
		DefaultMemoryRequest:   envString("BUILD_DEFAULT_MEMORY_REQUEST", "1Gi"),
		GitCloneImage:          envString("GIT_CLONE_IMAGE", "alpine/git:2.43.0"),
		KanikoImage:            envString("KANIKO_IMAGE", "gcr.io/kaniko-project/executor:v1.21.0"),
		BuildKitImage:          envString("BUILDKIT_IMAGE", "moby/buildkit:v0.13.0"),
	}
	cluster := ClusterConfig{
		Namespace:   envString("BUILD_NAMESPACE", "preview-builds"),
		BaseDomain:  envString("PREVIEW_BASE_DOMAIN", "preview.example.com"),
		LabelPrefix: envString("CLUSTER_LABEL_PREFIX", "preview.dev"),
	}

	p.mu.Lock()
	p.build = build
	p.cluster = cluster
	p.mu.Unlock()
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
