// Package credentials stores upstream API keys and bot tokens in
// credentials.toml so they can stay out of config.toml and the shell
// environment.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/relay/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// Service names accepted by `relay auth`.
const (
	Telegram   = "telegram"
	SerpAPI    = "serpapi"
	OpenRouter = "openrouter"
	Anthropic  = "anthropic"
)

// serviceEnvVars maps each service to the environment variable that the
// deployment conventionally uses for its secret.
var serviceEnvVars = map[string]string{
	Telegram:   "TELEGRAM_BOT_TOKEN",
	SerpAPI:    "SERPAPI_API_KEY",
	OpenRouter: "OPENROUTER_API_KEY",
	Anthropic:  "ANTHROPIC_API_KEY",
}

// Manager reads and writes credentials.toml in the .relay/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a credentials Manager. If override is non-empty it is
// used as the .relay/ directory; otherwise the standard dotdir resolution
// applies and ~/.relay/ is created when nothing resolves.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	if target == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home dir: %w", err)
		}
		target = filepath.Join(home, dotdir.DirName)
		if err := os.MkdirAll(target, 0o700); err != nil {
			return nil, fmt.Errorf("creating relay dir: %w", err)
		}
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns an empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version:  currentVersion,
				Services: make(map[string]ServiceCredential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Services == nil {
		creds.Services = make(map[string]ServiceCredential)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetKey stores the secret for service.
func (m *Manager) SetKey(service, key string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Services[service] = ServiceCredential{APIKey: key}

	return m.Save(creds)
}

// GetKey returns the stored secret for service, or "" when none is stored.
func (m *Manager) GetKey(service string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	return creds.Services[service].APIKey, nil
}

// RemoveKey deletes the stored secret for service.
func (m *Manager) RemoveKey(service string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Services, service)

	return m.Save(creds)
}

// ListServices returns the services that have stored secrets, sorted.
func (m *Manager) ListServices() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	services := make([]string, 0, len(creds.Services))
	for name := range creds.Services {
		services = append(services, name)
	}
	sort.Strings(services)

	return services, nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// EnvVarForService returns the conventional environment variable for service.
func EnvVarForService(service string) string {
	return serviceEnvVars[service]
}

// SupportedServices returns the services `relay auth` accepts.
func SupportedServices() []string {
	return []string{Telegram, SerpAPI, OpenRouter, Anthropic}
}

// IsSupportedService reports whether service is accepted by `relay auth`.
func IsSupportedService(service string) bool {
	return slices.Contains(SupportedServices(), service)
}
