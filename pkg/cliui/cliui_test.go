package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("Step", func() {
		It("prints a single result line for a non-terminal writer", func() {
			var buf bytes.Buffer
			err := cliui.Step(&buf, "Registering webhook", func() error { return nil })
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("Registering webhook"))
			Expect(buf.String()).To(ContainSubstring("✓"))
			Expect(buf.String()).To(HaveSuffix("\n"))
		})

		It("returns the callback error and marks the step failed", func() {
			var buf bytes.Buffer
			boom := errors.New("boom")
			Expect(cliui.Step(&buf, "Asking", func() error { return boom })).To(MatchError(boom))
			Expect(buf.String()).To(ContainSubstring("✗"))
		})
	})

	Describe("FormatDuration", func() {
		It("uses milliseconds below a second", func() {
			Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		})

		It("uses one decimal of seconds above a second", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("RenderMarkdown", func() {
		It("keeps the text content", func() {
			out, err := cliui.RenderMarkdown("📝 Answer: **Paris**")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Paris"))
		})
	})
})
