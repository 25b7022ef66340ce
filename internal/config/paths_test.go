package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	paths := DefaultPaths()

	if paths.ConfigDir == "" {
		t.Error("ConfigDir is empty")
	}
	if paths.DataDir == "" {
		t.Error("DataDir is empty")
	}
	if filepath.Base(paths.ConfigDir) != "cinematch" {
		t.Errorf("ConfigDir should end in cinematch: %s", paths.ConfigDir)
	}
}

func TestDefaultPaths_XDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG test not applicable on Windows")
	}

	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	t.Setenv("XDG_DATA_HOME", "/custom/data")

	paths := DefaultPaths()

	if !strings.HasPrefix(paths.ConfigDir, "/custom/config") {
		t.Errorf("ConfigDir should respect XDG_CONFIG_HOME: %s", paths.ConfigDir)
	}
	if !strings.HasPrefix(paths.DataDir, "/custom/data") {
		t.Errorf("DataDir should respect XDG_DATA_HOME: %s", paths.DataDir)
	}
}

func TestPaths_ConfigFile(t *testing.T) {
	paths := &Paths{ConfigDir: "/test/config"}
	if got := paths.ConfigFile(); got != filepath.Join("/test/config", "config.yaml") {
		t.Errorf("ConfigFile() = %s", got)
	}
}

func TestPaths_CatalogFile(t *testing.T) {
	paths := &Paths{DataDir: "/test/data"}
	if got := paths.CatalogFile(); got != filepath.Join("/test/data", "imdb.csv") {
		t.Errorf("CatalogFile() = %s", got)
	}
}

func TestConfig_CatalogPath(t *testing.T) {
	paths := &Paths{DataDir: "/test/data"}
	cfg := DefaultConfig()

	if got := cfg.CatalogPath(paths); got != "imdb.csv" {
		t.Errorf("CatalogPath() = %s, want imdb.csv", got)
	}

	cfg.Catalog.Path = ""
	if got := cfg.CatalogPath(paths); got != paths.CatalogFile() {
		t.Errorf("CatalogPath() = %s, want %s", got, paths.CatalogFile())
	}
}

func TestPaths_EnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	paths := &Paths{
		ConfigDir: filepath.Join(tmpDir, "config", "cinematch"),
		DataDir:   filepath.Join(tmpDir, "data", "cinematch"),
	}

	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{paths.ConfigDir, paths.DataDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("Directory should exist: %s", dir)
		} else if !info.IsDir() {
			t.Errorf("Should be a directory: %s", dir)
		}
	}
}

func TestHomeDir(t *testing.T) {
	home := homeDir()

	if home == "" {
		t.Error("homeDir returned empty string")
	}
	if !filepath.IsAbs(home) {
		t.Errorf("homeDir should return absolute path: %s", home)
	}
}
