package utils

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		Expect(Truncate("this is a long string", 10)).To(Equal("this is a ..."))
	})

	It("never splits a multi-byte rune", func() {
		Expect(Truncate("📝 Respuesta: París", 3)).To(Equal("📝 R..."))
	})
})

var _ = Describe("ClipUTF16", func() {
	units := func(s string) int {
		return len(utf16.Encode([]rune(s)))
	}

	It("leaves short strings alone", func() {
		Expect(ClipUTF16("hola", 4096)).To(Equal("hola"))
	})

	It("caps the length including the ellipsis", func() {
		clipped := ClipUTF16(strings.Repeat("é", 5000), 4096)
		Expect(units(clipped)).To(Equal(4096))
		Expect(clipped).To(HaveSuffix("…"))
	})

	It("counts characters outside the BMP as two units", func() {
		long := strings.Repeat("📝", 3000)
		Expect(utf8.RuneCountInString(long)).To(BeNumerically("<", 4096))

		clipped := ClipUTF16(long, 4096)
		Expect(units(clipped)).To(BeNumerically("<=", 4096))
		Expect(clipped).To(HaveSuffix("…"))
		Expect(utf8.ValidString(clipped)).To(BeTrue())
	})

	It("keeps a string that fits exactly", func() {
		s := strings.Repeat("🔍", 2048)
		Expect(ClipUTF16(s, 4096)).To(Equal(s))
	})
})
