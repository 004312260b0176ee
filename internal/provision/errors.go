package provision

import (
	"errors"
	"fmt"
)

// ErrToolNotFound is returned by a Locator when no executable with the
// requested name exists on the search path.
var ErrToolNotFound = errors.New("tool not found on search path")

// UnsupportedArchitectureError is returned when the machine architecture has
// no release-asset naming. The search path is left unmodified.
type UnsupportedArchitectureError struct {
	Arch string
}

func (e *UnsupportedArchitectureError) Error() string {
	return fmt.Sprintf("unsupported architecture '%s' (supported: amd64, arm64)", e.Arch)
}

// Interface guard for UnsupportedArchitectureError
var _ error = &UnsupportedArchitectureError{}

// UnsupportedOperatingSystemError is returned when the operating system has
// no release-asset naming.
type UnsupportedOperatingSystemError struct {
	OS string
}

func (e *UnsupportedOperatingSystemError) Error() string {
	return fmt.Sprintf("unsupported operating system '%s' (supported: %s)", e.OS, supportedOSList())
}

// Interface guard for UnsupportedOperatingSystemError
var _ error = &UnsupportedOperatingSystemError{}

// DownloadError is returned when fetching a tool artifact fails. It is not
// retried at this layer; the caller decides whether the run can continue.
type DownloadError struct {
	Tool string
	URL  string
	Err  error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download tool '%s' from %s: %v", e.Tool, e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Interface guard for DownloadError
var _ error = &DownloadError{}
