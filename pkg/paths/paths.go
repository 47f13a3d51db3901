package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir returns the config directory for reconcore.
// Order: XDG_CONFIG_HOME/reconcore, platform-specific fallback.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reconcore")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "Reconcore")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "reconcore")
}

// DataDir returns the data directory for reconcore.
// Order: XDG_DATA_HOME/reconcore, platform-specific fallback.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "reconcore")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "Reconcore")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "reconcore")
}

// CacheDir returns the cache directory for reconcore.
// Order: XDG_CACHE_HOME/reconcore, platform-specific fallback.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "reconcore")
	}
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			return filepath.Join(localAppData, "Reconcore", "Cache")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "reconcore")
}

// sweepHelperNames maps a GOOS/GOARCH pair to the bundled binary name for
// the external fast-sweep helper. Only combinations actually shipped in
// bin/ are listed; anything else falls back to PATH lookup.
var sweepHelperNames = map[string]string{
	"windows/amd64": "sweephelper-windows-x64.exe",
	"linux/amd64":   "sweephelper-linux-x64",
	"darwin/amd64":  "sweephelper-macos-x64",
	"darwin/arm64":  "sweephelper-macos-arm64",
}

// SweepHelperBinaryName returns the bundled binary filename for the
// running GOOS/GOARCH, or "" when no prebuilt binary is shipped for this
// platform (the caller should fall back to a PATH lookup or the in-process
// scanner).
func SweepHelperBinaryName() string {
	return sweepHelperNames[runtime.GOOS+"/"+runtime.GOARCH]
}

// SweepHelperBinDir returns the directory searched for a bundled helper
// binary: <dir containing the running executable>/bin, falling back to
// ./bin relative to the current working directory if the executable path
// can't be resolved.
func SweepHelperBinDir() string {
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Join(filepath.Dir(exe), "bin")
	}
	return "bin"
}

// ResolveSweepHelperPath looks for the platform's bundled helper binary
// under SweepHelperBinDir(). It returns "" when no binary is shipped for
// this platform or the file is not present; the caller decides whether to
// try a PATH lookup next.
func ResolveSweepHelperPath() string {
	name := SweepHelperBinaryName()
	if name == "" {
		return ""
	}
	candidate := filepath.Join(SweepHelperBinDir(), name)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return ""
}
