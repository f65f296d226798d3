package bootstrap_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/cmd/relay/bootstrap"
	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/credentials"
	"github.com/papercomputeco/relay/pkg/logger"
	"github.com/papercomputeco/relay/pkg/storage"
)

var _ = Describe("bootstrap", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.NewDefaultConfig()
		cfg.Reasoning.APIKey = "or-key"
		cfg.Search.APIKey = "serp-key"
		cfg.Telegram.Token = "123:abc"
	})

	Describe("ReasoningParams", func() {
		It("copies the model parameters", func() {
			params := bootstrap.ReasoningParams(cfg)
			Expect(params.Model).To(Equal("microsoft/mai-ds-r1:free"))
			Expect(params.Temperature).To(Equal(0.7))
			Expect(params.MaxTokens).To(Equal(1500))
		})
	})

	Describe("NewReasoner", func() {
		It("builds the openrouter provider by default", func() {
			client, err := bootstrap.NewReasoner(cfg, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			Expect(client.Name()).To(Equal("openrouter"))
			Expect(client.Params().Model).To(Equal(cfg.Reasoning.Model))
		})

		It("builds the anthropic provider", func() {
			cfg.Reasoning.Provider = "anthropic"
			client, err := bootstrap.NewReasoner(cfg, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			Expect(client.Name()).To(Equal("anthropic"))
		})

		It("rejects an unknown provider", func() {
			cfg.Reasoning.Provider = "carrier-pigeon"
			_, err := bootstrap.NewReasoner(cfg, logger.Nop())
			Expect(err).To(MatchError(ContainSubstring("creating reasoning provider")))
		})
	})

	Describe("NewSearcher and NewTelegram", func() {
		It("require their credentials", func() {
			_, err := bootstrap.NewSearcher(cfg, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			_, err = bootstrap.NewTelegram(cfg, logger.Nop())
			Expect(err).NotTo(HaveOccurred())

			cfg.Search.APIKey = ""
			_, err = bootstrap.NewSearcher(cfg, logger.Nop())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("NewStore", func() {
		It("opens a sqlite store with the configured retention", func() {
			cfg.Storage.SQLitePath = filepath.Join(GinkgoT().TempDir(), "relay.sqlite")
			cfg.History.Cap = 2

			store, err := bootstrap.NewStore(context.Background(), cfg, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(store.Close)

			ctx := context.Background()
			for _, content := range []string{"a", "b", "c"} {
				_, err := store.Record(ctx, "7", storage.RoleUser, content)
				Expect(err).NotTo(HaveOccurred())
			}
			turns, err := store.Recent(ctx, "7", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
		})
	})

	Describe("LoadConfig", func() {
		It("falls back to stored credentials for empty secrets", func() {
			dir := GinkgoT().TempDir()
			for _, env := range []string{
				"TELEGRAM_BOT_TOKEN", "RELAY_TELEGRAM_TOKEN",
				"SERPAPI_API_KEY", "RELAY_SEARCH_API_KEY",
				"OPENROUTER_API_KEY", "ANTHROPIC_API_KEY", "RELAY_REASONING_API_KEY",
			} {
				GinkgoT().Setenv(env, "")
			}

			mgr, err := credentials.NewManager(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey(credentials.SerpAPI, "serp-from-file")).To(Succeed())

			cmd := &cobra.Command{Use: "test"}
			cmd.Flags().String("config-dir", "", "")
			Expect(cmd.Flags().Set("config-dir", dir)).To(Succeed())
			var model string
			config.AddStringFlag(cmd, config.RelayFlags, config.FlagModel, &model)
			Expect(cmd.Flags().Set("model", "openai/gpt-4o-mini")).To(Succeed())

			_, loaded, err := bootstrap.LoadConfig(cmd, []string{config.FlagModel})
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Search.APIKey).To(Equal("serp-from-file"))
			Expect(loaded.Reasoning.Model).To(Equal("openai/gpt-4o-mini"))
		})
	})
})
