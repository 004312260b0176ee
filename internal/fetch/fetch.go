// Package fetch downloads release artifacts over HTTP.
package fetch

import (
	"context"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Fetcher downloads a URL to a local file. Implementations must fail loudly
// on HTTP error status or network error and never leave a partial file behind.
type Fetcher interface {
	Download(ctx context.Context, url, dest string) error
}

// HTTPFetcher implements Fetcher using a resty client.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates the Fetcher used in production. No request timeout
// is set; cancellation comes from the caller's context.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: resty.New()}
}

func (f *HTTPFetcher) Download(ctx context.Context, url, dest string) error {
	zap.L().Debug("Downloading artifact", zap.String("url", url), zap.String("dest", dest))

	resp, err := f.client.R().SetContext(ctx).SetOutput(dest).Get(url)
	if err != nil {
		removePartial(dest)
		return fmt.Errorf("failed to download %s: %w", url, err)
	}

	// resty writes the response body to dest even for error statuses, so the
	// partial file has to go before we report the failure.
	if resp.IsError() {
		removePartial(dest)
		return fmt.Errorf("unexpected status %s downloading %s", resp.Status(), url)
	}

	return nil
}

// Interface guard for HTTPFetcher
var _ Fetcher = &HTTPFetcher{}

func removePartial(dest string) {
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("Failed to remove partial download", zap.String("dest", dest), zap.Error(err))
	}
}

// DownloadExecutable downloads url to dest through f and marks the result
// executable.
func DownloadExecutable(ctx context.Context, f Fetcher, url, dest string) error {
	if err := f.Download(ctx, url, dest); err != nil {
		return err
	}

	// #nosec G302 -- downloaded helper binaries must be executable
	if err := os.Chmod(dest, 0755); err != nil {
		return fmt.Errorf("failed to mark %s executable: %w", dest, err)
	}

	return nil
}

// MockFetcher is a mock implementation of Fetcher for testing.
// It can be used across packages to test code that depends on Fetcher.
type MockFetcher struct {
	DownloadErr  error
	DownloadFunc func(url, dest string) error
	Calls        []struct{ URL, Dest string }
}

func (m *MockFetcher) Download(_ context.Context, url, dest string) error {
	m.Calls = append(m.Calls, struct{ URL, Dest string }{url, dest})
	if m.DownloadFunc != nil {
		return m.DownloadFunc(url, dest)
	}
	if m.DownloadErr != nil {
		return m.DownloadErr
	}
	// Produce the file like the real fetcher would, so chmod and path checks
	// in callers keep working.
	// #nosec G306 -- test artifact
	return os.WriteFile(dest, []byte("#!/bin/sh\nexit 0\n"), 0644)
}

// Interface guard
var _ Fetcher = &MockFetcher{}
