package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/previewlabs/preview-backend/internal/logger"
	"github.com/previewlabs/preview-backend/pkg/domain/entities"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type TemplateRepository interface {
	GetAllTemplates() ([]*entities.ServiceTemplate, error)
}

type OverrideRepository interface {
	GetActiveOverrides(repo string, prNumber int) ([]*entities.BranchOverride, error)
}

type DeployableRepository interface {
	ReplaceForBuild(buildID uuid.UUID, deployables []*entities.DeployableEntity) error
}

type SourceControl interface {
	FetchDeclarativeConfig(ctx context.Context, repo, branch string) (data []byte, found bool, err error)
}

// Resolver merges the database-defined environment template with the
// branch's declarative file into one flat deployable set per build
// attempt, then applies comment-driven overrides and persists the result.
type Resolver struct {
	templates   TemplateRepository
	overrides   OverrideRepository
	deployables DeployableRepository
	scm         SourceControl
}

func NewResolver(
	templates TemplateRepository,
	overrides OverrideRepository,
	deployables DeployableRepository,
	scm SourceControl,
) *Resolver {
	return &Resolver{
		templates:   templates,
		overrides:   overrides,
		deployables: deployables,
		scm:         scm,
	}
}

// Resolve produces the deployable map for one build attempt. Only a
// template-store failure aborts the attempt; every per-service problem
// degrades that one service and leaves its siblings intact.
func (r *Resolver) Resolve(
	ctx context.Context,
	build *entities.BuildEntity,
) (map[string]*entities.DeployableEntity, error) {
	all, err := r.templates.GetAllTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment templates: %w", err)
	}

	result := r.baseline(build, all)
	r.mergeBranchConfig(ctx, build, result)
	r.applyOverrides(build, result)

	ordered := lo.Values(result)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })
	if err := r.deployables.ReplaceForBuild(build.ID, ordered); err != nil {
		return nil, fmt.Errorf("failed to persist deployables: %w", err)
	}

	return result, nil
}

// baseline selects the default template set plus the build's optional
// sets, then pulls in one level of services that declare a dependency on
// a selected one. Deeper transitive chains are not expanded.
func (r *Resolver) baseline(
	build *entities.BuildEntity,
	all []*entities.ServiceTemplate,
) map[string]*entities.DeployableEntity {
	selected := lo.Filter(all, func(t *entities.ServiceTemplate, _ int) bool {
		return t.SetName == "" || lo.Contains(build.OptionalSets, t.SetName)
	})
	names := lo.SliceToMap(selected, func(t *entities.ServiceTemplate) (string, bool) {
		return t.Name, true
	})
	for _, t := range all {
		if !names[t.Name] && t.DependsOn != "" && names[t.DependsOn] {
			selected = append(selected, t)
			names[t.Name] = true
		}
	}

	result := make(map[string]*entities.DeployableEntity, len(selected))
	for _, t := range selected {
		result[t.Name] = r.fromTemplate(build, t)
	}
	return result
}

// mergeBranchConfig overlays the branch's declarative file onto the
// baseline. A missing or malformed file degrades to baseline only; it
// never fails the attempt.
func (r *Resolver) mergeBranchConfig(
	ctx context.Context,
	build *entities.BuildEntity,
	result map[string]*entities.DeployableEntity,
) {
	data, found, err := r.scm.FetchDeclarativeConfig(ctx, build.Repo, build.Branch)
	if err != nil {
		logger.Warn("failed to fetch branch config, using baseline only",
			zap.String("repo", build.Repo), zap.String("branch", build.Branch), zap.Error(err))
		return
	}
	if !found {
		return
	}
	cfg, err := ParseBranchConfig(data)
	if err != nil {
		logger.Warn("malformed branch config, using baseline only",
			zap.String("repo", build.Repo), zap.String("branch", build.Branch), zap.Error(err))
		return
	}

	names := lo.Keys(cfg.Services)
	sort.Strings(names)
	for _, name := range names {
		svc := cfg.Services[name]
		d := r.fromYAML(build, name, svc)
		r.resolveRequires(ctx, build, cfg, name, svc, d, result)
		if base, ok := result[name]; ok {
			// Declarative attributes fully replace the baseline except for
			// env, which is shallow-merged with declarative winning.
			d.Env = lo.Assign(base.Env, d.Env)
		}
		result[name] = d
	}
}

// resolveRequires handles a declared "requires" list on a declarative
// service: each required name must already be resolvable in the same
// attempt. Cross-repo services get one level of inner dependency pulled
// from their upstream repository's declarative file; nothing deeper.
func (r *Resolver) resolveRequires(
	ctx context.Context,
	build *entities.BuildEntity,
	cfg *BranchConfig,
	name string,
	svc *ServiceConfig,
	d *entities.DeployableEntity,
	result map[string]*entities.DeployableEntity,
) {
	for _, req := range svc.Requires {
		if _, ok := result[req]; ok {
			continue
		}
		if _, ok := cfg.Services[req]; ok {
			// Defined in the same file; its own iteration adds it.
			continue
		}
		if svc.Repo != "" && svc.Repo != build.Repo {
			if r.resolveUpstreamRequire(ctx, build, svc, req, result) {
				continue
			}
		}
		d.Status = entities.DeployStatusConfigError
		d.StatusReason = fmt.Sprintf("required service %q could not be resolved", req)
		logger.Warn("unresolvable requires entry",
			zap.String("service", name), zap.String("requires", req))
	}
}

func (r *Resolver) resolveUpstreamRequire(
	ctx context.Context,
	build *entities.BuildEntity,
	svc *ServiceConfig,
	req string,
	result map[string]*entities.DeployableEntity,
) bool {
	branch := svc.Branch
	if branch == "" {
		branch = "main"
	}
	data, found, err := r.scm.FetchDeclarativeConfig(ctx, svc.Repo, branch)
	if err != nil || !found {
		return false
	}
	upstream, err := ParseBranchConfig(data)
	if err != nil {
		return false
	}
	inner, ok := upstream.Services[req]
	if !ok {
		return false
	}
	d := r.fromYAML(build, req, inner)
	if d.Repo == build.Repo {
		// Inner services default to the upstream repository, not the PR's.
		d.Repo = svc.Repo
		d.Branch = branch
	}
	result[req] = d
	return true
}

func (r *Resolver) applyOverrides(
	build *entities.BuildEntity,
	result map[string]*entities.DeployableEntity,
) {
	overrides, err := r.overrides.GetActiveOverrides(build.Repo, build.PRNumber)
	if err != nil {
		logger.Warn("failed to load branch overrides", zap.Error(err))
		return
	}
	for _, o := range overrides {
		d, ok := result[o.ServiceName]
		if !ok {
			logger.Warn("override names unknown service, ignoring",
				zap.String("service", o.ServiceName),
				zap.String("build", build.ID.String()))
			continue
		}
		if o.Enabled != nil && !*o.Enabled {
			logger.Info("service disabled by override", zap.String("service", o.ServiceName))
			delete(result, o.ServiceName)
			continue
		}
		if o.Branch != "" {
			d.Branch = o.Branch
		}
		if o.Tag != "" {
			d.TagOverride = o.Tag
		}
	}
}

func (r *Resolver) fromTemplate(
	build *entities.BuildEntity,
	t *entities.ServiceTemplate,
) *entities.DeployableEntity {
	repo := t.Repo
	branch := t.Branch
	if repo == "" || repo == build.Repo {
		// Services hosted in the PR's own repository build the PR branch.
		repo = build.Repo
		branch = build.Branch
	}
	return &entities.DeployableEntity{
		ID:             uuid.New(),
		BuildID:        build.ID,
		Name:           t.Name,
		Type:           t.Type,
		Builder:        defaultBuilder(t.Type, t.Builder),
		Repo:           repo,
		Branch:         branch,
		Image:          t.Image,
		Dockerfile:     t.Dockerfile,
		InitDockerfile: t.InitDockerfile,
		DependsOn:      t.DependsOn,
		Env:            lo.Assign(map[string]string{}, t.Env),
		Bindings:       append([]entities.EnvBinding(nil), t.Bindings...),
		Resources:      t.Resources,
		Probe:          t.Probe,
		Port:           t.Port,
	}
}

func (r *Resolver) fromYAML(
	build *entities.BuildEntity,
	name string,
	svc *ServiceConfig,
) *entities.DeployableEntity {
	repo := svc.Repo
	branch := svc.Branch
	if repo == "" || repo == build.Repo {
		repo = build.Repo
		branch = build.Branch
	} else if branch == "" {
		branch = "main"
	}

	d := &entities.DeployableEntity{
		ID:             uuid.New(),
		BuildID:        build.ID,
		Name:           name,
		Repo:           repo,
		Branch:         branch,
		Image:          svc.Image,
		Dockerfile:     svc.Dockerfile,
		InitDockerfile: svc.InitDockerfile,
		DependsOn:      svc.DependsOn,
		Requires:       append([]string(nil), svc.Requires...),
		Env:            lo.Assign(map[string]string{}, svc.Env),
		Port:           svc.Port,
		Resources: entities.ResourceSpec{
			CPURequest:    svc.Resources.CPU,
			CPULimit:      svc.Resources.CPULimit,
			MemoryRequest: svc.Resources.Memory,
			MemoryLimit:   svc.Resources.MemoryLimit,
		},
		Probe: entities.ProbeSpec{
			Path:                svc.Readiness.Path,
			Port:                svc.Readiness.Port,
			InitialDelaySeconds: svc.Readiness.InitialDelaySeconds,
			PeriodSeconds:       svc.Readiness.PeriodSeconds,
		},
	}
	for _, need := range svc.Needs {
		d.Bindings = append(d.Bindings, entities.EnvBinding{
			SourceService: need.Service,
			EnvKey:        need.EnvKey,
			Pattern:       need.Pattern,
		})
	}

	srcType, err := sourceType(svc)
	if err != nil {
		d.Status = entities.DeployStatusConfigError
		d.StatusReason = err.Error()
		return d
	}
	d.Type = srcType
	d.Builder = defaultBuilder(srcType, entities.Builder(svc.Builder))
	return d
}

// sourceType resolves the declared type, inferring from the present
// fields when omitted. An unknown type string is a config error.
func sourceType(svc *ServiceConfig) (entities.SourceType, error) {
	switch entities.SourceType(svc.Type) {
	case entities.SourceTypeImage, entities.SourceTypeDockerfile,
		entities.SourceTypeRemoteCI, entities.SourceTypeDatastoreRestore,
		entities.SourceTypeExternal, entities.SourceTypeConfig:
		return entities.SourceType(svc.Type), nil
	case "":
	default:
		return "", fmt.Errorf("unknown service type %q", svc.Type)
	}
	if svc.Dockerfile != "" {
		return entities.SourceTypeDockerfile, nil
	}
	if svc.Image != "" {
		return entities.SourceTypeImage, nil
	}
	return entities.SourceTypeConfig, nil
}

// defaultBuilder fills the builder selection at resolution time so the
// engine selector never has to guess: an empty selection on a buildable
// type is explicit configuration, not an engine-side default.
func defaultBuilder(t entities.SourceType, b entities.Builder) entities.Builder {
	if b != "" {
		return b
	}
	switch t {
	case entities.SourceTypeDockerfile:
		return entities.BuilderBuildKit
	case entities.SourceTypeRemoteCI:
		return entities.BuilderRemoteCI
	}
	return ""
}
