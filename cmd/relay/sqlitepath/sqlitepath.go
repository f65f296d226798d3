// Package sqlitepath locates an existing relay sqlite history database for
// commands that read history outside a running server.
package sqlitepath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

func ResolveSQLitePath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("RELAY_STORAGE_SQLITE_PATH")); envPath != "" {
		return envPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv("RELAY_SQLITE")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.New("could not find relay SQLite database; pass --sqlite or --database-url")
}

func sqliteCandidates() []string {
	candidates := []string{
		"relay.sqlite",
		"relay.db",
		filepath.Join(".relay", "relay.sqlite"),
		filepath.Join(".relay", "relay.db"),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".relay", "relay.sqlite"),
			filepath.Join(home, ".relay", "relay.db"),
		)
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates,
			filepath.Join(xdgHome, "relay", "relay.sqlite"),
		)
	}

	return candidates
}
