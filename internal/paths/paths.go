// Package paths resolves the ownbox configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under the platform base directories.
const AppName = "ownbox"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "OWNBOX_CONFIG_DIR"
	EnvDataDir   = "OWNBOX_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// baseDir describes where one kind of directory lives on Linux.
type baseDir struct {
	xdgEnv   string   // XDG override variable
	fallback []string // path under $HOME when the XDG variable is unset
}

var (
	configBase = baseDir{xdgEnv: "XDG_CONFIG_HOME", fallback: []string{".config"}}
	dataBase   = baseDir{xdgEnv: "XDG_DATA_HOME", fallback: []string{".local", "share"}}
)

// resolve returns <base>/ownbox for the current platform. Linux follows the
// XDG base directory layout; macOS and Windows use os.UserConfigDir for
// both kinds.
func (d baseDir) resolve() (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(d.xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, d.fallback...), AppName)...), nil
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/ownbox (fallback ~/.config/ownbox)
// macOS:   ~/Library/Application Support/ownbox
// Windows: %APPDATA%/ownbox
func DefaultConfigDir() (string, error) {
	return configBase.resolve()
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/ownbox (fallback ~/.local/share/ownbox)
// macOS and Windows: same as DefaultConfigDir.
func DefaultDataDir() (string, error) {
	return dataBase.resolve()
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > OWNBOX_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	return firstAbs(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml data_dir > OWNBOX_DATA_DIR > DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	return firstAbs(DefaultDataDir, flag, configValue, os.Getenv(EnvDataDir))
}

// firstAbs returns the first non-empty candidate made absolute, or the
// fallback when every candidate is empty.
func firstAbs(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}
