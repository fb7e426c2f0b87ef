package services_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/canonical/sosreport-agent/internal/models"
	"github.com/canonical/sosreport-agent/internal/services"
)

var _ = Describe("CleanupManager", func() {
	var fs afero.Fs

	BeforeEach(func() {
		fs = afero.NewMemMapFs()
	})

	It("should remove every file and report success", func() {
		Expect(afero.WriteFile(fs, "/tmp/sos-collector-42-a.tar.xz", []byte("a"), 0o600)).To(Succeed())
		Expect(afero.WriteFile(fs, "/tmp/sos-collector-42-b.tar.xz", []byte("b"), 0o600)).To(Succeed())

		report := services.NewCleanupManager(fs).Cleanup([]string{
			"/tmp/sos-collector-42-a.tar.xz",
			"/tmp/sos-collector-42-b.tar.xz",
		})
		Expect(report.Success).To(BeTrue())
		Expect(report.Results).To(HaveLen(2))
		for _, r := range report.Results {
			Expect(r.Removed).To(BeTrue())
		}

		exists, _ := afero.Exists(fs, "/tmp/sos-collector-42-a.tar.xz")
		Expect(exists).To(BeFalse())
	})

	It("should record a not-found failure without stopping the pass", func() {
		Expect(afero.WriteFile(fs, "/tmp/sos-collector-42-b.tar.xz", []byte("b"), 0o600)).To(Succeed())

		report := services.NewCleanupManager(fs).Cleanup([]string{
			"/tmp/missing.tar.xz",
			"/tmp/sos-collector-42-b.tar.xz",
		})
		Expect(report.Success).To(BeFalse())
		Expect(report.Results).To(HaveLen(2))
		Expect(report.Results[0].Removed).To(BeFalse())
		Expect(report.Results[0].Kind).To(Equal(models.CleanupFailureNotFound))
		Expect(report.Results[1].Removed).To(BeTrue())
	})

	It("should classify a permission failure", func() {
		Expect(afero.WriteFile(fs, "/tmp/sos-collector-42-a.tar.xz", []byte("a"), 0o600)).To(Succeed())
		readonly := afero.NewReadOnlyFs(fs)

		report := services.NewCleanupManager(readonly).Cleanup([]string{"/tmp/sos-collector-42-a.tar.xz"})
		Expect(report.Success).To(BeFalse())
		Expect(report.Results[0].Kind).To(Equal(models.CleanupFailurePermissionDenied))
	})
})
