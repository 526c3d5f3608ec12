// Package config provides configuration management for rpick.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "rpick"

// Paths holds the per-user locations rpick reads and writes.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/rpick)
	ConfigDir string

	// DataDir is the directory for the history database and logs (~/.local/share/rpick)
	DataDir string

	// RuntimeDir holds the picker lock file
	RuntimeDir string
}

// DefaultPaths returns the default paths based on the XDG Base Directory
// layout. On Windows, it uses %APPDATA% and %LOCALAPPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}
		return &Paths{
			ConfigDir:  filepath.Join(appData, appName),
			DataDir:    filepath.Join(localAppData, appName),
			RuntimeDir: filepath.Join(localAppData, appName, "run"),
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = filepath.Join(dataHome, appName, "run")
	} else {
		runtimeDir = filepath.Join(runtimeDir, appName)
	}

	return &Paths{
		ConfigDir:  filepath.Join(configHome, appName),
		DataDir:    filepath.Join(dataHome, appName),
		RuntimeDir: runtimeDir,
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// DatabaseFile returns the path to the pick history database.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "history.db")
}

// LogDir returns the path to the log directory.
func (p *Paths) LogDir() string {
	return filepath.Join(p.DataDir, "logs")
}

// LogFile returns the path to the default log file.
func (p *Paths) LogFile() string {
	return filepath.Join(p.LogDir(), "rpick.log")
}

// LockFile returns the path to the single-picker lock.
func (p *Paths) LockFile() string {
	return filepath.Join(p.RuntimeDir, "picker.lock")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir, p.RuntimeDir, p.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}
