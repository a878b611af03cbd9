package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName  = "connectk"
	dbSubdir = "db"
	bookFile = "openings.bin"
)

// platformDataHome is the per-user data root: Application Support on
// macOS, %APPDATA% on Windows, $XDG_DATA_HOME or ~/.local/share elsewhere.
func platformDataHome() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support"), err
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Roaming"), err
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	return filepath.Join(home, ".local", "share"), err
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// GetDataDir returns the directory connectk keeps its files in, creating
// it if needed. A non-empty override replaces the platform default.
func GetDataDir(override string) (string, error) {
	if override != "" {
		return ensureDir(override)
	}
	home, err := platformDataHome()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(home, appName))
}

// GetDatabaseDir returns the badger directory under the data directory.
func GetDatabaseDir(override string) (string, error) {
	dataDir, err := GetDataDir(override)
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(dataDir, dbSubdir))
}

// DefaultBookPath is where `connectk book` writes when no file is named.
func DefaultBookPath(override string) (string, error) {
	dataDir, err := GetDataDir(override)
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, bookFile), nil
}
