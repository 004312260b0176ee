package core

const (
	GOOSDarwin  = "darwin"
	GOOSLinux   = "linux"
	GOOSWindows = "windows"
)

const (
	ArchAMD64 = "amd64"
	ArchARM64 = "arm64"
)

// EnvDebug is the variable set in the execution context when debug mode is
// enabled, so delegated commands can adjust their own verbosity.
const EnvDebug = "DEBUG"
