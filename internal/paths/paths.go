// Package paths resolves the configuration and data directories of the
// larder CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under the platform locations.
const AppName = "larder"

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".larder"
	DefaultDataDirName   = ".larder-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "LARDER_CONFIG_DIR"
	EnvDataDir   = "LARDER_DATA_DIR"
)

// File names inside the resolved directories.
const (
	ConfigFileName = "config.yaml"
	DatabaseName   = "larder.db"
	FieldsFileName = "fields.jsonl"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// location describes where a kind of directory lives on Linux.
type location struct {
	xdgEnv   string
	fallback []string
}

var (
	configLocation = location{xdgEnv: "XDG_CONFIG_HOME", fallback: []string{".config"}}
	dataLocation   = location{xdgEnv: "XDG_DATA_HOME", fallback: []string{".local", "share"}}
)

func platformDefault(loc location) (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv(loc.xdgEnv); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		parts := append([]string{home}, loc.fallback...)
		return filepath.Join(append(parts, AppName)...), nil
	}
	// ~/Library/Application Support on macOS, %APPDATA% on Windows.
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/larder (fallback ~/.config/larder)
// macOS:   ~/Library/Application Support/larder
// Windows: %APPDATA%/larder
func DefaultConfigDir() (string, error) {
	return platformDefault(configLocation)
}

// DefaultDataDir returns the platform-specific data directory.
//
// Linux:   $XDG_DATA_HOME/larder (fallback ~/.local/share/larder)
// macOS and Windows: same as the config directory.
func DefaultDataDir() (string, error) {
	return platformDefault(dataLocation)
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > LARDER_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml value > LARDER_DATA_DIR env > $(CWD)/.larder-db.
//
// The fixture database is scratch state for the scenarios in the current
// directory, so the fallback is CWD-relative rather than DefaultDataDir.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, candidate := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if candidate != "" {
			return filepath.Abs(candidate)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the path of config.yaml inside dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// FieldsFile returns the path of the field definitions file inside dataDir.
func FieldsFile(dataDir string) string {
	return filepath.Join(dataDir, FieldsFileName)
}
