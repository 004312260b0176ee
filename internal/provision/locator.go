package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/olmkit/olmkit/internal/core"
)

// Locator resolves a tool name to an executable file on an execution
// context's search path, allowing for testing with mocks.
type Locator interface {
	Look(name string, ec *core.ExecutionContext) (string, error)
}

// SystemLocator implements Locator against the real filesystem. It searches
// the context's path rather than the ambient process PATH so that earlier
// provisioning steps are visible to later lookups.
type SystemLocator struct{}

// NewSystemLocator creates the Locator used in production.
func NewSystemLocator() *SystemLocator {
	return &SystemLocator{}
}

func (l *SystemLocator) Look(name string, ec *core.ExecutionContext) (string, error) {
	for _, dir := range ec.SearchPath() {
		if dir == "" {
			continue
		}

		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}

		if core.IsExecutable(info) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("'%s': %w", name, ErrToolNotFound)
}

// Interface guard for SystemLocator
var _ Locator = &SystemLocator{}

// MockLocator is a mock implementation of Locator for testing.
// It can be used across packages to test code that depends on Locator.
type MockLocator struct {
	Paths     map[string]string // tool name -> resolved path
	LookCalls []string
}

func (m *MockLocator) Look(name string, _ *core.ExecutionContext) (string, error) {
	m.LookCalls = append(m.LookCalls, name)
	if path, ok := m.Paths[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("'%s': %w", name, ErrToolNotFound)
}

// Interface guard
var _ Locator = &MockLocator{}
