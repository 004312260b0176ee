// Package provision makes required helper binaries available without
// requiring them to be preinstalled in the base environment.
package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/olmkit/olmkit/internal/core"
	"github.com/olmkit/olmkit/internal/fetch"
)

// Provisioner ensures named tools are resolvable on an execution context's
// search path, downloading platform-specific release artifacts when needed.
type Provisioner struct {
	locator  Locator
	fetcher  fetch.Fetcher
	platform Platform
}

// NewProvisioner creates a provisioner for the host platform.
func NewProvisioner(locator Locator, fetcher fetch.Fetcher) *Provisioner {
	return NewProvisionerWithPlatform(locator, fetcher, HostPlatform())
}

// NewProvisionerWithPlatform creates a provisioner for an explicit platform.
// This is useful for testing the platform mapping without cross-compiling.
func NewProvisionerWithPlatform(locator Locator, fetcher fetch.Fetcher, platform Platform) *Provisioner {
	return &Provisioner{
		locator:  locator,
		fetcher:  fetcher,
		platform: platform,
	}
}

// Ensure makes spec.Name resolvable on ec's search path. If the tool is
// already resolvable this is a no-op: no network access, no path mutation.
// Otherwise the artifact is downloaded into a fresh temp directory which is
// prepended to the search path. The temp directory is deliberately never
// cleaned up; the prepended path entry would dangle otherwise, and the leak
// is bounded by the process lifetime.
func (p *Provisioner) Ensure(ctx context.Context, spec ToolSpec, ec *core.ExecutionContext) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	if path, err := p.locator.Look(spec.Name, ec); err == nil {
		zap.L().Info("Tool already available", zap.String("tool", spec.Name), zap.String("path", path))
		return nil
	}

	url, err := spec.ResolveURL(p.platform)
	if err != nil {
		return err
	}

	tempDir, err := os.MkdirTemp("", "olmkit-"+spec.Name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	dest := filepath.Join(tempDir, spec.Name)
	if err := fetch.DownloadExecutable(ctx, p.fetcher, url, dest); err != nil {
		if removeErr := os.RemoveAll(tempDir); removeErr != nil {
			zap.L().Warn("Failed to clean up temp directory after failed download",
				zap.String("dir", tempDir), zap.Error(removeErr))
		}
		return &DownloadError{Tool: spec.Name, URL: url, Err: err}
	}

	ec.PrependPath(tempDir)
	zap.L().Info("Tool provisioned",
		zap.String("tool", spec.Name),
		zap.String("version", spec.Version),
		zap.String("path", dest))

	return nil
}
