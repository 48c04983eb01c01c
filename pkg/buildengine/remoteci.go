package buildengine

import (
	"context"
	"fmt"
	"time"

	"github.com/previewlabs/preview-backend/internal/logger"
	"github.com/previewlabs/preview-backend/pkg/domain/entities"
	"github.com/previewlabs/preview-backend/pkg/globalconfig"

	"go.uber.org/zap"
)

// remoteCIEngine hands the build to an external CI system: trigger a
// pipeline, poll until it completes, fetch logs afterwards. There is no
// local job object, so there is no completion probe to fall back on.
type remoteCIEngine struct {
	client CIClient
	cfg    *globalconfig.Provider
}

func NewRemoteCIEngine(client CIClient, cfg *globalconfig.Provider) Engine {
	return &remoteCIEngine{client: client, cfg: cfg}
}

func (e *remoteCIEngine) Supports(t entities.SourceType, b entities.Builder) bool {
	return t == entities.SourceTypeRemoteCI && b == entities.BuilderRemoteCI
}

func (e *remoteCIEngine) Build(
	ctx context.Context,
	deploy *entities.DeployEntity,
	opts BuildOptions,
) (*entities.BuildAttemptResult, error) {
	d := deploy.Deployable
	bc := e.cfg.Build()

	args := map[string]string{
		"REVISION":    opts.Revision,
		"IMAGE":       d.Image,
		"TAG":         opts.Tag,
		"BRANCH":      d.Branch,
		"SERVICE":     d.Name,
		"CI_ENDPOINT": bc.RemoteCIEndpoint,
	}
	for k, v := range opts.BuildArgs {
		args[k] = v
	}

	runID, err := e.client.TriggerPipeline(ctx, "build-"+d.Name, args)
	if err != nil {
		return nil, &entities.BuildExecutionError{
			Service: d.Name,
			Cause:   fmt.Errorf("failed to trigger pipeline: %w", err),
		}
	}
	if opts.OnBuilding != nil {
		opts.OnBuilding()
	}

	status, err := e.awaitRun(ctx, runID, bc)
	if err != nil {
		return nil, &entities.BuildExecutionError{Service: d.Name, Cause: err}
	}

	logs, err := e.client.GetRunLogs(ctx, runID)
	if err != nil {
		// The verdict stands without logs.
		logger.Warn("failed to fetch remote CI logs",
			zap.String("deploy", deploy.UUID), zap.String("run", runID), zap.Error(err))
	}

	return &entities.BuildAttemptResult{
		Success: status.Success,
		Logs:    logs,
		JobID:   runID,
	}, nil
}

func (e *remoteCIEngine) awaitRun(
	ctx context.Context,
	runID string,
	bc globalconfig.BuildConfig,
) (RunStatus, error) {
	deadline := time.Now().Add(bc.JobTimeout)
	for {
		status, err := e.client.GetRunStatus(ctx, runID)
		if err == nil && status.Completed {
			return status, nil
		}
		if err != nil {
			logger.Warn("remote CI status poll failed", zap.String("run", runID), zap.Error(err))
		}
		if time.Now().After(deadline) {
			return RunStatus{}, fmt.Errorf("pipeline run %s did not complete within %s", runID, bc.JobTimeout)
		}
		select {
		case <-ctx.Done():
			return RunStatus{}, ctx.Err()
		case <-time.After(bc.RemoteCIPollInterval):
		}
	}
}
