package uploader_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/canonical/sosreport-agent/internal/config"
	"github.com/canonical/sosreport-agent/internal/uploader"
)

var _ = Describe("authMethod", func() {
	It("should fall back to password auth without a private key", func() {
		auth, err := uploader.AuthMethod(config.Upload{Password: "secret"})
		Expect(err).NotTo(HaveOccurred())
		Expect(auth).NotTo(BeNil())
	})

	It("should prefer the private key over the password", func() {
		// The key path wins even when a password is configured, so a
		// broken key path must surface instead of silently degrading to
		// password auth.
		_, err := uploader.AuthMethod(config.Upload{
			Password:       "secret",
			PrivateKeyFile: "/nonexistent/intake_ed25519",
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("reading private key"))
	})
})
