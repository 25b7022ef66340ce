// Package config provides configuration management for cinematch.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds the directories cinematch reads from.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/cinematch)
	ConfigDir string

	// DataDir is the directory for catalog files (~/.local/share/cinematch)
	DataDir string
}

// DefaultPaths returns the default paths following the XDG Base Directory layout.
// On Windows, it uses %APPDATA% instead.
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
			ConfigDir: filepath.Join(appData, "cinematch"),
			DataDir:   filepath.Join(localAppData, "cinematch"),
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

	return &Paths{
		ConfigDir: filepath.Join(configHome, "cinematch"),
		DataDir:   filepath.Join(dataHome, "cinematch"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// CatalogFile returns the catalog used when catalog.path is empty.
func (p *Paths) CatalogFile() string {
	return filepath.Join(p.DataDir, "imdb.csv")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CatalogPath returns the catalog file to load: catalog.path when set,
// otherwise the data directory default.
func (c *Config) CatalogPath(p *Paths) string {
	if c.Catalog.Path != "" {
		return c.Catalog.Path
	}
	return p.CatalogFile()
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
