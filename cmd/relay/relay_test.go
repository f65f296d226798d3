package relaycmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	relaycmder "github.com/papercomputeco/relay/cmd/relay"
)

var _ = Describe("NewRelayCmd", func() {
	It("registers every subcommand", func() {
		cmd := relaycmder.NewRelayCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("serve", "ask", "history", "webhook", "config", "auth", "version"))
	})

	It("has the global flags", func() {
		cmd := relaycmder.NewRelayCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})
})
