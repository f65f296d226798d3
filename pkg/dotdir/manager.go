// Package dotdir resolves the .relay/ directory that holds config.toml,
// credentials.toml and the default sqlite history database.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the relay state directory.
	DirName = ".relay"

	sqliteFile = "relay.sqlite"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .relay/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.relay/ dir
//  3. Home ~/.relay/ dir
//
// An empty string is returned when none of them apply.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating relay directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if isDir(filepath.Join(cwd, DirName)) {
		return filepath.Join(cwd, DirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	if isDir(filepath.Join(home, DirName)) {
		return filepath.Join(home, DirName), nil
	}

	return "", nil
}

// SQLitePath returns the default sqlite history database location inside the
// resolved .relay/ directory, or "" when no directory was resolved.
func (m *Manager) SQLitePath(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir == "" {
		return "", err
	}
	return filepath.Join(dir, sqliteFile), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
