package entities

import "fmt"

// ConfigError marks a defective service definition: malformed declarative
// file, unknown builder selection, unresolvable upstream. It lands the
// deploy in CONFIG_ERROR and never aborts sibling processing.
type ConfigError struct {
	Service string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for service %q: %s", e.Service, e.Reason)
}

// DependencyTimeoutError is raised when a cross-service wait exhausts its
// poll budget before the sibling's build output shows up.
type DependencyTimeoutError struct {
	Service       string
	SourceService string
	EnvKey        string
}

func (e *DependencyTimeoutError) Error() string {
	return fmt.Sprintf(
		"service %q timed out waiting for build output of %q (env key %q)",
		e.Service, e.SourceService, e.EnvKey,
	)
}

// BuildExecutionError wraps a failed build: cluster job failed, registry
// auth failed, remote pipeline errored.
type BuildExecutionError struct {
	Service string
	Cause   error
}

func (e *BuildExecutionError) Error() string {
	return fmt.Sprintf("build failed for service %q: %v", e.Service, e.Cause)
}

func (e *BuildExecutionError) Unwrap() error { return e.Cause }
