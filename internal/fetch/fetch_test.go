package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olmkit/olmkit/internal/core"
)

// TestDownload_Success tests that a 200 response is written to the destination
func TestDownload_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("binary-contents"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "tool")
	fetcher := NewHTTPFetcher()

	err := fetcher.Download(context.Background(), server.URL+"/tool", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "binary-contents", string(data))
}

// TestDownload_HTTPErrorStatus tests that error statuses fail and leave no partial file
func TestDownload_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "tool")
	fetcher := NewHTTPFetcher()

	err := fetcher.Download(context.Background(), server.URL+"/missing", dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "partial file must be removed on error status")
}

// TestDownload_NetworkError tests that connection failures are surfaced
func TestDownload_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	dest := filepath.Join(t.TempDir(), "tool")
	fetcher := NewHTTPFetcher()

	err := fetcher.Download(context.Background(), url, dest)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

// TestDownloadExecutable tests that the downloaded file ends up executable
func TestDownloadExecutable(t *testing.T) {
	if runtime.GOOS == core.GOOSWindows {
		t.Skip("Skipping permission bit test on Windows")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("#!/bin/sh\nexit 0\n"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "installer.sh")

	err := DownloadExecutable(context.Background(), NewHTTPFetcher(), server.URL, dest)
	require.NoError(t, err)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, core.IsExecutable(info))
}

// TestMockFetcher tests the shared mock's recording behavior
func TestMockFetcher(t *testing.T) {
	mock := &MockFetcher{}
	dest := filepath.Join(t.TempDir(), "tool")

	err := mock.Download(context.Background(), "https://example.com/tool", dest)
	require.NoError(t, err)
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, "https://example.com/tool", mock.Calls[0].URL)

	_, statErr := os.Stat(dest)
	assert.NoError(t, statErr)
}
