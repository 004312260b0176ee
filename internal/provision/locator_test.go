package provision

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olmkit/olmkit/internal/core"
)

// TestSystemLocator_FindsExecutable tests lookup of an executable on the context path
func TestSystemLocator_FindsExecutable(t *testing.T) {
	if runtime.GOOS == core.GOOSWindows {
		t.Skip("Skipping permission bit test on Windows")
	}

	tmpDir := t.TempDir()
	toolPath := filepath.Join(tmpDir, "umoci")
	// #nosec G306 -- test file permissions are acceptable for temporary test files
	require.NoError(t, os.WriteFile(toolPath, []byte("#!/bin/sh\n"), 0755))

	ec := core.NewExecutionContextWithPath(tmpDir)
	locator := NewSystemLocator()

	got, err := locator.Look("umoci", ec)
	require.NoError(t, err)
	assert.Equal(t, toolPath, got)
}

// TestSystemLocator_SearchOrder tests that earlier path entries win
func TestSystemLocator_SearchOrder(t *testing.T) {
	if runtime.GOOS == core.GOOSWindows {
		t.Skip("Skipping permission bit test on Windows")
	}

	first := t.TempDir()
	second := t.TempDir()
	for _, dir := range []string{first, second} {
		// #nosec G306 -- test file permissions are acceptable for temporary test files
		require.NoError(t, os.WriteFile(filepath.Join(dir, "opm"), []byte("#!/bin/sh\n"), 0755))
	}

	ec := core.NewExecutionContextWithPath(second)
	ec.PrependPath(first)

	got, err := NewSystemLocator().Look("opm", ec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "opm"), got)
}

// TestSystemLocator_SkipsNonExecutable tests that plain files are not resolved
func TestSystemLocator_SkipsNonExecutable(t *testing.T) {
	if runtime.GOOS == core.GOOSWindows {
		t.Skip("Skipping permission bit test on Windows")
	}

	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "umoci"), []byte("data"), 0644))

	ec := core.NewExecutionContextWithPath(tmpDir)

	_, err := NewSystemLocator().Look("umoci", ec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

// TestSystemLocator_SkipsDirectories tests that a directory with the tool name is not resolved
func TestSystemLocator_SkipsDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "opm"), 0750))

	ec := core.NewExecutionContextWithPath(tmpDir)

	_, err := NewSystemLocator().Look("opm", ec)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

// TestSystemLocator_EmptyPath tests lookup against an empty search path
func TestSystemLocator_EmptyPath(t *testing.T) {
	ec := core.NewExecutionContextWithPath()

	_, err := NewSystemLocator().Look("umoci", ec)
	assert.ErrorIs(t, err, ErrToolNotFound)
}
