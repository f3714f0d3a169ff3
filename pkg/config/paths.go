package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName names the config and cache directories.
	AppName = "stateviz"
	// EnvConfigPath overrides config file discovery.
	EnvConfigPath = "STATEVIZ_CONFIG"
	// FileName is the config file looked for in the working directory.
	FileName = "stateviz.toml"
)

// FindPath returns the first existing config file, or "" when there is none.
func FindPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}
	if fileExists(FileName) {
		if abs, err := filepath.Abs(FileName); err == nil {
			return abs
		}
		return FileName
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if path := filepath.Join(xdg, AppName, "config.toml"); fileExists(path) {
			return path
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		if path := filepath.Join(home, ".config", AppName, "config.toml"); fileExists(path) {
			return path
		}
	}
	return ""
}

// CacheDir returns the cache directory using XDG standard (~/.cache/stateviz/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
