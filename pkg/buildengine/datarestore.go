package buildengine

import (
	"context"
	"fmt"

	"github.com/previewlabs/preview-backend/internal/logger"
	"github.com/previewlabs/preview-backend/pkg/domain/entities"

	"go.uber.org/zap"
)

// datastoreRestoreEngine provisions a managed-datastore restore. Restores
// are made idempotent by checking for a resource already tagged with the
// current build+service before triggering a new one.
type datastoreRestoreEngine struct {
	client DatastoreClient
}

func NewDatastoreRestoreEngine(client DatastoreClient) Engine {
	return &datastoreRestoreEngine{client: client}
}

func (e *datastoreRestoreEngine) Supports(t entities.SourceType, b entities.Builder) bool {
	return t == entities.SourceTypeDatastoreRestore && b == ""
}

func (e *datastoreRestoreEngine) Build(
	ctx context.Context,
	deploy *entities.DeployEntity,
	_ BuildOptions,
) (*entities.BuildAttemptResult, error) {
	d := deploy.Deployable

	exists, err := e.client.RestoreExists(ctx, d.BuildID.String(), d.Name)
	if err != nil {
		return nil, &entities.BuildExecutionError{
			Service: d.Name,
			Cause:   fmt.Errorf("failed to check existing restore: %w", err),
		}
	}
	if exists {
		logger.Info("restore already present, skipping",
			zap.String("deploy", deploy.UUID))
		return &entities.BuildAttemptResult{
			Success: true,
			Logs:    fmt.Sprintf("restore for %s already present", d.Name),
		}, nil
	}

	logs, err := e.client.TriggerRestore(ctx, d.BuildID.String(), d.Name)
	if err != nil {
		return nil, &entities.BuildExecutionError{
			Service: d.Name,
			Cause:   fmt.Errorf("restore failed: %w", err),
		}
	}
	return &entities.BuildAttemptResult{Success: true, Logs: logs}, nil
}
