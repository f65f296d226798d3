package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/config"
)

var _ = Describe("Configer config", func() {
	var (
		tmpDir string
		c      *config.Configer
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())

		c, err = config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("loads a config file and fills the gaps with defaults", func() {
			data := `version = 0

[reasoning]
model = "openai/gpt-4o-mini"
max_tokens = 800

[history]
cap = 6
`
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Reasoning.Model).To(Equal("openai/gpt-4o-mini"))
			Expect(cfg.Reasoning.MaxTokens).To(Equal(uint(800)))
			Expect(cfg.Reasoning.Temperature).To(Equal(0.7))
			Expect(cfg.Reasoning.Provider).To(Equal("openrouter"))
			Expect(cfg.History.Cap).To(Equal(uint(6)))
			Expect(cfg.History.ContextTurns).To(Equal(uint(3)))
			Expect(cfg.Search.NumResults).To(Equal(uint(3)))
		})

		It("returns error for malformed TOML", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not valid toml [[["), 0o600)).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).To(HaveOccurred())
			Expect(cfg).To(BeNil())
		})

		It("returns error for unsupported config version", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("version = 99\n"), 0o600)).To(Succeed())

			_, err := c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version")))
		})
	})

	Describe("SaveConfig", func() {
		It("persists config to disk", func() {
			cfg := config.NewDefaultConfig()
			cfg.Storage.SQLitePath = "/var/lib/relay/relay.sqlite"
			cfg.Search.Strict = true

			Expect(c.SaveConfig(cfg)).To(Succeed())

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Storage.SQLitePath).To(Equal("/var/lib/relay/relay.sqlite"))
			Expect(loaded.Search.Strict).To(BeTrue())
		})

		It("returns error for nil config", func() {
			Expect(c.SaveConfig(nil)).To(HaveOccurred())
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		It("sets and reads string keys", func() {
			Expect(c.SetConfigValue("reasoning.model", "anthropic/claude-3.5-haiku")).To(Succeed())

			val, err := c.GetConfigValue("reasoning.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("anthropic/claude-3.5-haiku"))
		})

		It("sets numeric and boolean keys", func() {
			Expect(c.SetConfigValue("history.cap", "20")).To(Succeed())
			Expect(c.SetConfigValue("reasoning.temperature", "0.2")).To(Succeed())
			Expect(c.SetConfigValue("server.mcp", "true")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.History.Cap).To(Equal(uint(20)))
			Expect(cfg.Reasoning.Temperature).To(Equal(0.2))
			Expect(cfg.Server.MCP).To(BeTrue())
		})

		It("rejects invalid values", func() {
			Expect(c.SetConfigValue("history.cap", "lots")).To(MatchError(ContainSubstring("invalid value")))
			Expect(c.SetConfigValue("upstream.timeout", "soon")).To(MatchError(ContainSubstring("invalid value")))
		})

		It("rejects unknown and secret keys", func() {
			Expect(c.SetConfigValue("nonexistent_key", "value")).To(MatchError(ContainSubstring("unknown config key")))
			Expect(c.SetConfigValue("telegram.token", "123:abc")).To(MatchError(ContainSubstring("unknown config key")))

			_, err := c.GetConfigValue("search.api_key")
			Expect(err).To(HaveOccurred())
		})

		It("returns empty string for key with no default", func() {
			val, err := c.GetConfigValue("storage.database_url")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(BeEmpty())
		})
	})

	Describe("ValidConfigKeys", func() {
		It("lists every key in section order", func() {
			keys := config.ValidConfigKeys()
			Expect(keys[0]).To(Equal("server.listen"))
			Expect(keys).To(ContainElements("history.cap", "events.topic", "search.strict", "server.inspect"))
			Expect(keys).NotTo(ContainElement("server.api_token"))
			for _, k := range keys {
				Expect(config.IsValidConfigKey(k)).To(BeTrue(), k)
			}
		})
	})
})

var _ = Describe("Config", func() {
	Describe("UpstreamTimeout", func() {
		It("parses the configured duration", func() {
			cfg := config.NewDefaultConfig()
			cfg.Upstream.Timeout = "5s"
			Expect(cfg.UpstreamTimeout().Seconds()).To(Equal(5.0))
		})

		It("falls back to 30s on garbage", func() {
			cfg := config.NewDefaultConfig()
			cfg.Upstream.Timeout = "whenever"
			Expect(cfg.UpstreamTimeout().Seconds()).To(Equal(30.0))
		})
	})

	Describe("Validate", func() {
		It("reports the first missing credential", func() {
			cfg := config.NewDefaultConfig()
			cfg.Search.APIKey = "serp"

			err := cfg.Validate(config.RequireSearch, config.RequireReasoning, config.RequireTelegram)
			var missing *config.MissingError
			Expect(err).To(BeAssignableToTypeOf(missing))
			Expect(err.(*config.MissingError).Key).To(Equal("reasoning.api_key"))
			Expect(err.Error()).To(ContainSubstring("OPENROUTER_API_KEY"))
		})

		It("names the anthropic variable for the anthropic provider", func() {
			cfg := config.NewDefaultConfig()
			cfg.Reasoning.Provider = "anthropic"

			Expect(cfg.Validate(config.RequireReasoning)).To(MatchError(ContainSubstring("ANTHROPIC_API_KEY")))
		})

		It("requires an API token for the inspection and MCP routes", func() {
			cfg := config.NewDefaultConfig()
			err := cfg.Validate(config.RequireAPIToken)
			Expect(err).To(MatchError(ContainSubstring("server.api_token")))

			cfg.Server.APIToken = "t0ken"
			Expect(cfg.Validate(config.RequireAPIToken)).To(Succeed())
		})

		It("passes when everything required is present", func() {
			cfg := config.NewDefaultConfig()
			cfg.Telegram.Token = "bot"
			Expect(cfg.Validate(config.RequireTelegram)).To(Succeed())
		})
	})

	Describe("ApplySecrets", func() {
		It("fills only empty secrets", func() {
			cfg := config.NewDefaultConfig()
			cfg.Telegram.Token = "from-env"

			src := fakeSecrets{"telegram": "from-file", "serpapi": "serp", "openrouter": "or", "anthropic": "ant"}
			Expect(cfg.ApplySecrets(src)).To(Succeed())

			Expect(cfg.Telegram.Token).To(Equal("from-env"))
			Expect(cfg.Search.APIKey).To(Equal("serp"))
			Expect(cfg.Reasoning.APIKey).To(Equal("or"))
		})

		It("uses the anthropic credential for the anthropic provider", func() {
			cfg := config.NewDefaultConfig()
			cfg.Reasoning.Provider = "anthropic"

			Expect(cfg.ApplySecrets(fakeSecrets{"openrouter": "or", "anthropic": "ant"})).To(Succeed())
			Expect(cfg.Reasoning.APIKey).To(Equal("ant"))
		})
	})
})

type fakeSecrets map[string]string

func (f fakeSecrets) GetKey(service string) (string, error) {
	return f[service], nil
}
