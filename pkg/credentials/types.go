package credentials

// Credentials is the on-disk shape of credentials.toml.
type Credentials struct {
	Version  int                          `toml:"version"`
	Services map[string]ServiceCredential `toml:"services"`
}

// ServiceCredential holds the secret for one upstream service.
type ServiceCredential struct {
	APIKey string `toml:"api_key"`
}
