package provision

import (
	"runtime"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/olmkit/olmkit/internal/core"
)

// Platform identifies the host a tool artifact is selected for. Arch may be
// a raw machine string (uname -m style, e.g. "x86_64"); Normalize maps it to
// the naming used by release assets.
type Platform struct {
	OS   string
	Arch string
}

// HostPlatform returns the platform of the running process.
func HostPlatform() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

var supportedOS = mapset.NewSet(core.GOOSLinux, core.GOOSDarwin)

// archAliases maps machine architecture strings, raw or already normalized,
// onto release asset arch tokens.
var archAliases = map[string]string{
	"x86_64":       core.ArchAMD64,
	core.ArchAMD64: core.ArchAMD64,
	"aarch64":      core.ArchARM64,
	core.ArchARM64: core.ArchARM64,
}

// Normalize lower-cases the OS name and maps the architecture onto
// {amd64, arm64}. Anything outside the supported {linux, darwin} x
// {amd64, arm64} set is a defined failure, not a crash.
func (p Platform) Normalize() (Platform, error) {
	osName := strings.ToLower(p.OS)
	if !supportedOS.Contains(osName) {
		return Platform{}, &UnsupportedOperatingSystemError{OS: p.OS}
	}

	arch, ok := archAliases[strings.ToLower(p.Arch)]
	if !ok {
		return Platform{}, &UnsupportedArchitectureError{Arch: p.Arch}
	}

	return Platform{OS: osName, Arch: arch}, nil
}

func supportedOSList() string {
	names := supportedOS.ToSlice()
	sort.Strings(names)
	return strings.Join(names, ", ")
}
