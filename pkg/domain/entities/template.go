package entities

// ServiceTemplate is the database-defined baseline for one service of the
// environment. Templates in the default set (empty SetName) are included
// in every build; named sets are opted into per build attempt.
type ServiceTemplate struct {
	Name           string
	SetName        string
	Type           SourceType
	Builder        Builder
	Repo           string
	Branch         string
	Image          string
	Dockerfile     string
	InitDockerfile string
	DependsOn      string
	Env            map[string]string
	Bindings       []EnvBinding
	Resources      ResourceSpec
	Probe          ProbeSpec
	Port           int
}

// BranchOverride is a comment-driven per-service override applied after
// the template/declarative merge. A nil Enabled leaves enablement alone.
type BranchOverride struct {
	ServiceName string
	Branch      string
	Tag         string
	Enabled     *bool
}
