package entities

type DeployStatus string

const (
	DeployStatusQueued       DeployStatus = "QUEUED"
	DeployStatusCloning      DeployStatus = "CLONING"
	DeployStatusBuilding     DeployStatus = "BUILDING"
	DeployStatusWaiting      DeployStatus = "WAITING"
	DeployStatusBuilt        DeployStatus = "BUILT"
	DeployStatusDeploying    DeployStatus = "DEPLOYING"
	DeployStatusReady        DeployStatus = "READY"
	DeployStatusDeployed     DeployStatus = "DEPLOYED"
	DeployStatusError        DeployStatus = "ERROR"
	DeployStatusBuildFailed  DeployStatus = "BUILD_FAILED"
	DeployStatusDeployFailed DeployStatus = "DEPLOY_FAILED"
	DeployStatusConfigError  DeployStatus = "CONFIG_ERROR"
)

// Terminal reports whether a status ends the current attempt. A terminal
// status is only left by a fresh attempt carrying a new run token.
func (s DeployStatus) Terminal() bool {
	switch s {
	case DeployStatusReady, DeployStatusDeployed, DeployStatusError,
		DeployStatusBuildFailed, DeployStatusDeployFailed, DeployStatusConfigError:
		return true
	}
	return false
}

type BuildStatus string

const (
	BuildStatusPending    BuildStatus = "PENDING"
	BuildStatusInProgress BuildStatus = "IN_PROGRESS"
	BuildStatusCompleted  BuildStatus = "COMPLETED"
	BuildStatusTornDown   BuildStatus = "TORN_DOWN"
)

// SourceType says where a service's runnable image comes from.
type SourceType string

const (
	SourceTypeImage            SourceType = "image"
	SourceTypeDockerfile       SourceType = "dockerfile"
	SourceTypeRemoteCI         SourceType = "remote-ci"
	SourceTypeDatastoreRestore SourceType = "datastore-restore"
	SourceTypeExternal         SourceType = "external"
	SourceTypeConfig           SourceType = "config"
)

// Buildable reports whether the type produces an image from source and is
// therefore subject to the tag-exists skip.
func (t SourceType) Buildable() bool {
	return t == SourceTypeDockerfile || t == SourceTypeRemoteCI
}

// Builder selects which build engine runs a buildable service.
type Builder string

const (
	BuilderBuildKit Builder = "buildkit"
	BuilderKaniko   Builder = "kaniko"
	BuilderRemoteCI Builder = "remote-ci"
)
