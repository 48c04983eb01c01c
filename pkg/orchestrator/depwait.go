package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/previewlabs/preview-backend/internal/logger"
	"github.com/previewlabs/preview-backend/pkg/domain/entities"

	"go.uber.org/zap"
)

// DeployOutputReader reads the accumulated build output of a sibling
// deploy; the wait loop polls it until the sibling's build has written
// something.
type DeployOutputReader interface {
	GetBuildOutput(id string) (string, error)
}

// DependencyResolver satisfies cross-service env bindings: for each
// binding, wait for the sibling's build output and extract the declared
// value. All bindings of one deploy resolve in parallel and their results
// are merged in one batch; if any binding fails, the whole wait fails so a
// service is never built with part of its required environment missing.
type DependencyResolver struct {
	outputs  DeployOutputReader
	interval time.Duration
	attempts int
}

func NewDependencyResolver(outputs DeployOutputReader, interval time.Duration, attempts int) *DependencyResolver {
	return &DependencyResolver{outputs: outputs, interval: interval, attempts: attempts}
}

type bindingResult struct {
	key string
	val string
	set bool
	err error
}

func (r *DependencyResolver) Await(
	ctx context.Context,
	deploy *entities.DeployEntity,
	bindings []entities.EnvBinding,
) (map[string]string, error) {
	results := make(chan bindingResult, len(bindings))
	for _, b := range bindings {
		go func(b entities.EnvBinding) {
			results <- r.awaitOne(ctx, deploy, b)
		}(b)
	}

	env := map[string]string{}
	var firstErr error
	for range bindings {
		res := <-results
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		if res.set {
			env[res.key] = res.val
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return env, nil
}

func (r *DependencyResolver) awaitOne(
	ctx context.Context,
	deploy *entities.DeployEntity,
	b entities.EnvBinding,
) bindingResult {
	siblingID := entities.DeployUUID(b.SourceService, deploy.BuildID)

	var output string
	for i := 0; i < r.attempts; i++ {
		out, err := r.outputs.GetBuildOutput(siblingID)
		if err != nil {
			logger.Warn("failed to read sibling build output",
				zap.String("deploy", deploy.UUID), zap.String("sibling", siblingID), zap.Error(err))
		} else if out != "" {
			output = out
			break
		}
		select {
		case <-ctx.Done():
			return bindingResult{err: ctx.Err()}
		case <-time.After(r.interval):
		}
	}
	if output == "" {
		return bindingResult{err: &entities.DependencyTimeoutError{
			Service:       serviceName(deploy),
			SourceService: b.SourceService,
			EnvKey:        b.EnvKey,
		}}
	}

	// An empty pattern is sequencing only: the wait mattered, no value is
	// extracted and the target key stays absent.
	if b.Pattern == "" {
		return bindingResult{}
	}

	re, err := regexp.Compile(b.Pattern)
	if err != nil {
		return bindingResult{err: &entities.ConfigError{
			Service: serviceName(deploy),
			Reason:  fmt.Sprintf("invalid extraction pattern %q: %v", b.Pattern, err),
		}}
	}
	m := re.FindStringSubmatch(output)
	if m == nil {
		return bindingResult{err: fmt.Errorf(
			"pattern %q matched nothing in build output of %q", b.Pattern, b.SourceService)}
	}
	val := m[0]
	if len(m) > 1 {
		val = m[1]
	}
	return bindingResult{key: b.EnvKey, val: val, set: true}
}

func serviceName(deploy *entities.DeployEntity) string {
	if deploy.Deployable != nil {
		return deploy.Deployable.Name
	}
	return deploy.UUID
}
