// Package platform answers the few OS questions the tray cares about: which
// process table to read, which window tool to call, and whether inotify can
// be trusted for the store directory.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform represents the detected platform
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL1    Platform = "wsl1"
	PlatformWSL2    Platform = "wsl2"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

var detectedPlatform Platform
var detectionDone bool

// Detect returns the current platform, caching the result
func Detect() Platform {
	if detectionDone {
		return detectedPlatform
	}
	detectedPlatform = detectPlatform()
	detectionDone = true
	return detectedPlatform
}

func detectPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
		return detectLinuxOrWSL()
	default:
		return PlatformUnknown
	}
}

func detectLinuxOrWSL() Platform {
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return detectWSLVersion()
	}

	procVersion, err := os.ReadFile("/proc/version")
	if err != nil {
		return PlatformLinux
	}
	if strings.Contains(strings.ToLower(string(procVersion)), "microsoft") {
		return detectWSLVersion()
	}
	return PlatformLinux
}

// detectWSLVersion tells WSL2 ("microsoft-standard" kernels, /run/WSL) from WSL1.
func detectWSLVersion() Platform {
	if procVersion, err := os.ReadFile("/proc/version"); err == nil {
		v := string(procVersion)
		if strings.Contains(v, "microsoft-standard") {
			return PlatformWSL2
		}
		if strings.Contains(v, "Microsoft") {
			return PlatformWSL1
		}
	}
	if _, err := os.Stat("/run/WSL"); err == nil {
		return PlatformWSL2
	}
	return PlatformWSL1
}

// IsWSL returns true if running in any WSL environment
func IsWSL() bool {
	p := Detect()
	return p == PlatformWSL1 || p == PlatformWSL2
}

// SupportsProcFS reports whether /proc/<pid>/stat can be used to walk the
// process tree. Everywhere else the locator shells out to ps.
func SupportsProcFS() bool {
	switch Detect() {
	case PlatformLinux, PlatformWSL1, PlatformWSL2:
		return true
	default:
		return false
	}
}

// HasX11 reports whether an X display is reachable for window tools like
// xdotool and wmctrl. Wayland sessions usually still run XWayland.
func HasX11() bool {
	if Detect() != PlatformLinux {
		return false
	}
	return os.Getenv("DISPLAY") != ""
}

// String returns a human-readable platform name
func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL1:
		return "WSL1"
	case PlatformWSL2:
		return "WSL2"
	case PlatformWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}

// CheckFsnotifySupport returns a warning when path lives on a filesystem
// where inotify misses writes from other machines or the Windows side
// (9p, NFS, CIFS, SSHFS), or "" when fsnotify can drive the tray.
func CheckFsnotifySupport(path string) string {
	if runtime.GOOS != "linux" {
		return ""
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	mounts, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return ""
	}
	return fsnotifyWarning(mountFSType(absPath, string(mounts)))
}

// mountFSType finds the filesystem type of the longest mount point
// containing absPath in /proc/mounts formatted data.
func mountFSType(absPath, mounts string) string {
	var matchedMount, matchedType string
	for _, line := range strings.Split(mounts, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		mountPoint, fsType := fields[1], fields[2]
		if !strings.HasPrefix(absPath, mountPoint) {
			continue
		}
		if len(mountPoint) > len(matchedMount) {
			matchedMount = mountPoint
			matchedType = fsType
		}
	}
	return matchedType
}

func fsnotifyWarning(fsType string) string {
	switch {
	case fsType == "9p":
		return "store on 9p mount (WSL2 Windows filesystem): file watching disabled, polling only"
	case fsType == "nfs" || fsType == "nfs4":
		return "store on NFS mount: file watching disabled, polling only"
	case fsType == "cifs" || fsType == "smbfs":
		return "store on CIFS/SMB mount: file watching disabled, polling only"
	case strings.HasPrefix(fsType, "fuse.sshfs"):
		return "store on SSHFS mount: file watching disabled, polling only"
	}
	return ""
}
