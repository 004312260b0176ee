package core

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ExecutionContext carries the mutable process-wide state that the pipeline
// threads through its steps: an ordered executable search path and the named
// variables exported to delegated commands. Steps mutate the context instead
// of the real process environment, which keeps the mutations explicit and
// testable. The real environment is consulted only when seeding the context
// and when building the environment of a child process.
type ExecutionContext struct {
	path []string
	vars map[string]string
}

// NewExecutionContext creates a context seeded from the process PATH.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		path: filepath.SplitList(os.Getenv("PATH")),
		vars: make(map[string]string),
	}
}

// NewExecutionContextWithPath creates a context with an explicit search path.
// Useful for tests that must not depend on the host PATH.
func NewExecutionContextWithPath(dirs ...string) *ExecutionContext {
	return &ExecutionContext{
		path: slices.Clone(dirs),
		vars: make(map[string]string),
	}
}

// PrependPath puts dir at the front of the search path so executables in it
// shadow any preinstalled ones. The mutation lasts for the context lifetime.
func (c *ExecutionContext) PrependPath(dir string) {
	c.path = append([]string{dir}, c.path...)
}

// SearchPath returns a copy of the ordered search path.
func (c *ExecutionContext) SearchPath() []string {
	return slices.Clone(c.path)
}

// Setenv sets a named variable visible to delegated commands.
func (c *ExecutionContext) Setenv(key, value string) {
	c.vars[key] = value
}

// Getenv returns a variable previously set on the context, or "" if unset.
func (c *ExecutionContext) Getenv(key string) string {
	return c.vars[key]
}

// Environ returns the environment for a delegated command: the process
// environment overlaid with the context's variables and search path.
// Later entries win for duplicate keys, per os/exec semantics.
func (c *ExecutionContext) Environ() []string {
	env := os.Environ()
	// Sorted so the overlay is deterministic, which keeps test assertions stable.
	for _, k := range slices.Sorted(maps.Keys(c.vars)) {
		env = append(env, k+"="+c.vars[k])
	}
	env = append(env, "PATH="+strings.Join(c.path, string(os.PathListSeparator)))
	return env
}
