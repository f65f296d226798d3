package historycmder_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	historycmder "github.com/papercomputeco/relay/cmd/relay/history"
	"github.com/papercomputeco/relay/pkg/storage"
	"github.com/papercomputeco/relay/pkg/storage/sqlite"
)

var _ = Describe("History Command", func() {
	var (
		dbPath string
		out    *bytes.Buffer
	)

	BeforeEach(func() {
		GinkgoT().Setenv("DATABASE_URL", "")
		GinkgoT().Setenv("RELAY_STORAGE_DATABASE_URL", "")

		dbPath = filepath.Join(GinkgoT().TempDir(), "relay.sqlite")
		out = &bytes.Buffer{}

		ctx := context.Background()
		store, err := sqlite.NewSQLiteDriver(ctx, dbPath, 10)
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Record(ctx, "42", storage.RoleUser, "What is the capital of France?")
		Expect(err).NotTo(HaveOccurred())
		_, err = store.Record(ctx, "42", storage.RoleAssistant, "📝 Answer: Paris.")
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Close()).To(Succeed())
	})

	run := func(args ...string) error {
		cmd := historycmder.NewHistoryCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.SetOut(out)
		cmd.SetArgs(append(args, "--config-dir", GinkgoT().TempDir(), "--sqlite", dbPath))
		return cmd.Execute()
	}

	It("prints recorded turns oldest first", func() {
		Expect(run("42")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("User"))
		Expect(out.String()).To(ContainSubstring("What is the capital of France?"))
		Expect(out.String()).To(ContainSubstring("Paris."))
	})

	It("prints JSON", func() {
		Expect(run("42", "--json", "--limit", "1")).To(Succeed())

		var turns []storage.Turn
		Expect(json.Unmarshal(out.Bytes(), &turns)).To(Succeed())
		Expect(turns).To(HaveLen(1))
		Expect(turns[0].Role).To(Equal(storage.RoleAssistant))
	})

	It("shows the no-history marker for an unknown user", func() {
		Expect(run("nobody")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No prior conversation."))
	})

	It("rejects a non-positive limit", func() {
		Expect(run("42", "--limit", "0")).To(MatchError(ContainSubstring("--limit must be positive")))
	})
})
