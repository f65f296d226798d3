package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	BeforeEach(func() {
		origCwd, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			Expect(os.Chdir(origCwd)).To(Succeed())
		})

		homeDir := GinkgoT().TempDir()
		GinkgoT().Setenv("HOME", homeDir)
		GinkgoT().Setenv("XDG_DATA_HOME", "")
		GinkgoT().Setenv("RELAY_STORAGE_SQLITE_PATH", "")
		GinkgoT().Setenv("RELAY_SQLITE", "")
	})

	It("returns the override unchanged", func() {
		path, err := ResolveSQLitePath("/srv/relay/history.sqlite")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/srv/relay/history.sqlite"))
	})

	It("prefers RELAY_STORAGE_SQLITE_PATH when set", func() {
		GinkgoT().Setenv("RELAY_STORAGE_SQLITE_PATH", "/tmp/custom.sqlite")
		GinkgoT().Setenv("RELAY_SQLITE", "/tmp/other.sqlite")

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.sqlite"))
	})

	It("resolves ./.relay/relay.sqlite when present", func() {
		tmpDir := GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".relay"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(tmpDir, ".relay", "relay.sqlite"), nil, 0o600)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(".relay", "relay.sqlite")))
	})

	It("resolves ~/.relay/relay.sqlite when present", func() {
		homeDir := GinkgoT().TempDir()
		GinkgoT().Setenv("HOME", homeDir)
		Expect(os.MkdirAll(filepath.Join(homeDir, ".relay"), 0o755)).To(Succeed())
		dbPath := filepath.Join(homeDir, ".relay", "relay.sqlite")
		Expect(os.WriteFile(dbPath, nil, 0o600)).To(Succeed())
		Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())

		path, err := ResolveSQLitePath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("errors when nothing is found", func() {
		Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())

		_, err := ResolveSQLitePath("")
		Expect(err).To(MatchError(ContainSubstring("could not find relay SQLite database")))
	})
})
