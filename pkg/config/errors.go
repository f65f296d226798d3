package config

import (
	"fmt"
	"strings"
)

// MissingError reports a required setting that no source provided.
// It is fatal at startup.
type MissingError struct {
	Key     string
	EnvVars []string
}

func (e *MissingError) Error() string {
	if len(e.EnvVars) == 0 {
		return fmt.Sprintf("missing required configuration %q", e.Key)
	}
	return fmt.Sprintf("missing required configuration %q (set %s or run `relay auth`)",
		e.Key, strings.Join(e.EnvVars, " or "))
}
