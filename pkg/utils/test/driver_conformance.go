package testutils

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/storage"
)

// DescribeHistoryDriver registers the behaviors every storage.Driver must
// share. newDriver is called before each test with the retention cap to use;
// the returned driver is closed after it.
func DescribeHistoryDriver(newDriver func(retention int) storage.Driver) {
	Describe("history driver behavior", func() {
		const retention = 5

		var (
			ctx    context.Context
			driver storage.Driver
		)

		BeforeEach(func() {
			ctx = context.Background()
			driver = newDriver(retention)
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		record := func(userID string, role storage.Role, content string) {
			_, err := driver.Record(ctx, userID, role, content)
			Expect(err).NotTo(HaveOccurred())
		}

		It("returns an empty result for an unknown user", func() {
			turns, err := driver.Recent(ctx, "unknown", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).NotTo(BeNil())
			Expect(turns).To(BeEmpty())
		})

		It("returns the recorded turn", func() {
			turn, err := driver.Record(ctx, "u1", storage.RoleUser, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(turn.UserID).To(Equal("u1"))
			Expect(turn.Role).To(Equal(storage.RoleUser))
			Expect(turn.Content).To(Equal("hello"))
			Expect(turn.Timestamp).NotTo(BeZero())
		})

		It("rejects an empty user id", func() {
			_, err := driver.Record(ctx, "", storage.RoleUser, "hello")
			Expect(err).To(MatchError(storage.ErrEmptyUserID))
		})

		It("returns turns in chronological order", func() {
			record("u1", storage.RoleUser, "first")
			record("u1", storage.RoleAssistant, "second")
			record("u1", storage.RoleSystem, "third")

			turns, err := driver.Recent(ctx, "u1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(3))
			Expect(turns[0].Content).To(Equal("first"))
			Expect(turns[0].Role).To(Equal(storage.RoleUser))
			Expect(turns[1].Content).To(Equal("second"))
			Expect(turns[1].Role).To(Equal(storage.RoleAssistant))
			Expect(turns[2].Content).To(Equal("third"))
			Expect(turns[2].Role).To(Equal(storage.RoleSystem))
		})

		It("returns only the newest limit turns", func() {
			for i := range 4 {
				record("u1", storage.RoleUser, fmt.Sprintf("m%d", i))
			}

			turns, err := driver.Recent(ctx, "u1", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Content).To(Equal("m2"))
			Expect(turns[1].Content).To(Equal("m3"))
		})

		It("keeps exactly the last cap turns after more than cap records", func() {
			for n := retention + 1; n <= 3*retention; n++ {
				userID := fmt.Sprintf("user-%d", n)
				for i := range n {
					record(userID, storage.RoleUser, fmt.Sprintf("m%d", i))
				}

				turns, err := driver.Recent(ctx, userID, 100)
				Expect(err).NotTo(HaveOccurred())
				Expect(turns).To(HaveLen(retention))
				for i, t := range turns {
					Expect(t.Content).To(Equal(fmt.Sprintf("m%d", n-retention+i)))
				}
			}
		})

		It("evicts per user", func() {
			record("quiet", storage.RoleUser, "only")
			for i := range retention + 3 {
				record("busy", storage.RoleUser, fmt.Sprintf("m%d", i))
			}

			turns, err := driver.Recent(ctx, "quiet", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))
			Expect(turns[0].Content).To(Equal("only"))
		})
	})
}
