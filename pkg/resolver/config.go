package resolver

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// BranchConfig is the declarative per-branch file (preview.yaml) a pull
// request may carry at its repository root.
type BranchConfig struct {
	Services map[string]*ServiceConfig `yaml:"services"`
}

type ServiceConfig struct {
	Type           string            `yaml:"type"`
	Repo           string            `yaml:"repo"`
	Branch         string            `yaml:"branch"`
	Image          string            `yaml:"image"`
	Dockerfile     string            `yaml:"dockerfile"`
	InitDockerfile string            `yaml:"init_dockerfile"`
	Builder        string            `yaml:"builder"`
	Port           int               `yaml:"port"`
	Env            map[string]string `yaml:"env"`
	DependsOn      string            `yaml:"depends_on"`
	Requires       []string          `yaml:"requires"`
	Needs          []NeedConfig      `yaml:"needs"`
	Resources      ResourcesConfig   `yaml:"resources"`
	Readiness      ReadinessConfig   `yaml:"readiness"`
}

// NeedConfig declares a cross-service env binding: wait for Service's
// build output, extract with Pattern into EnvKey.
type NeedConfig struct {
	Service string `yaml:"service"`
	EnvKey  string `yaml:"env_key"`
	Pattern string `yaml:"pattern"`
}

type ResourcesConfig struct {
	CPU         string `yaml:"cpu"`
	Memory      string `yaml:"memory"`
	CPULimit    string `yaml:"cpu_limit"`
	MemoryLimit string `yaml:"memory_limit"`
}

type ReadinessConfig struct {
	Path                string `yaml:"path"`
	Port                int    `yaml:"port"`
	InitialDelaySeconds int    `yaml:"initial_delay_seconds"`
	PeriodSeconds       int    `yaml:"period_seconds"`
}

// ParseBranchConfig decodes a declarative file. A file without a services
// block is malformed, not empty.
func ParseBranchConfig(data []byte) (*BranchConfig, error) {
	var cfg BranchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse branch config: %w", err)
	}
	if cfg.Services == nil {
		return nil, fmt.Errorf("branch config has no services block")
	}
	return &cfg, nil
}
