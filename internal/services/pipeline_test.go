package services_test

import (
	"context"
	"database/sql"
	"os/exec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/canonical/sosreport-agent/internal/config"
	"github.com/canonical/sosreport-agent/internal/models"
	"github.com/canonical/sosreport-agent/internal/services"
	"github.com/canonical/sosreport-agent/internal/store"
	"github.com/canonical/sosreport-agent/internal/store/migrations"
	"github.com/canonical/sosreport-agent/internal/uploader"
)

// fakeResolver returns a fixed node set.
type fakeResolver struct {
	nodes sets.Set[string]
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, _ string, _ models.Selectors) (sets.Set[string], error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.nodes, nil
}

// fakeUploader reports success for every file, applying the real rename.
type fakeUploader struct {
	uploaded []string
}

func (f *fakeUploader) Upload(_ context.Context, files []string) (models.UploadReport, error) {
	report := models.UploadReport{Success: true}
	for _, file := range files {
		f.uploaded = append(f.uploaded, file)
		report.Results = append(report.Results, models.TransferResult{
			LocalPath:  file,
			RemotePath: uploader.RemoteName(file),
			Uploaded:   true,
		})
	}
	return report, nil
}

var _ = Describe("Pipeline", func() {
	var (
		ctx      context.Context
		fs       afero.Fs
		db       *sql.DB
		st       *store.Store
		up       *fakeUploader
		pipeline *services.Pipeline
	)

	BeforeEach(func() {
		ctx = context.Background()
		fs = afero.NewMemMapFs()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())
		st = store.NewStore(db)

		collector := services.NewSosCollector(config.Sos{
			Binary: "sos", Command: "sos", TmpDir: "/tmp", SSHUser: "ubuntu",
		}, fs)
		collector.SetExecCommand(func(ctx context.Context, name string, args ...string) *exec.Cmd {
			return exec.CommandContext(ctx, "/bin/sh", "-c", "exit 0")
		})

		up = &fakeUploader{}
		resolver := &fakeResolver{nodes: sets.New("10.0.0.1", "10.0.0.2")}
		pipeline = services.NewPipeline(resolver, collector, up, services.NewCleanupManager(fs), st, "openstack", 0)
	})

	AfterEach(func() {
		if db != nil {
			_ = db.Close()
		}
	})

	It("should fail collect when no model is named anywhere", func() {
		noDefault := services.NewPipeline(&fakeResolver{nodes: sets.New("10.0.0.1")},
			services.NewSosCollector(config.Sos{TmpDir: "/tmp"}, fs), up,
			services.NewCleanupManager(fs), st, "", 0)

		_, err := noDefault.Collect(ctx, services.CollectRequest{CaseID: "42"})
		Expect(err).To(MatchError(services.ErrModelRequired))
	})

	It("should run the full collect, upload and cleanup flow for one case", func() {
		// Two artifacts "produced" by the collection.
		Expect(afero.WriteFile(fs, "/tmp/sos-collector-42-node1.tar.xz", []byte("a"), 0o600)).To(Succeed())
		Expect(afero.WriteFile(fs, "/tmp/sos-collector-42-node2.tar.xz", []byte("b"), 0o600)).To(Succeed())

		reports, err := pipeline.Collect(ctx, services.CollectRequest{CaseID: "42"})
		Expect(err).NotTo(HaveOccurred())
		Expect(reports).To(HaveLen(2))

		uploadReport, cleanupReport, err := pipeline.Upload(ctx, "42", true)
		Expect(err).NotTo(HaveOccurred())
		Expect(uploadReport.Success).To(BeTrue())
		Expect(uploadReport.Results).To(HaveLen(2))
		Expect(uploadReport.Results[0].RemotePath).To(ContainSubstring("sosreport-42"))
		Expect(up.uploaded).To(HaveLen(2))

		Expect(cleanupReport).NotTo(BeNil())
		Expect(cleanupReport.Success).To(BeTrue())
		Expect(cleanupReport.Results).To(HaveLen(2))

		for _, report := range reports {
			exists, _ := afero.Exists(fs, report)
			Expect(exists).To(BeFalse())
		}
	})

	It("should not clean up when cleanup is not requested", func() {
		Expect(afero.WriteFile(fs, "/tmp/sos-collector-42.tar.xz", []byte("a"), 0o600)).To(Succeed())

		_, cleanupReport, err := pipeline.Upload(ctx, "42", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(cleanupReport).To(BeNil())

		exists, _ := afero.Exists(fs, "/tmp/sos-collector-42.tar.xz")
		Expect(exists).To(BeTrue())
	})

	It("should record every action in the run history", func() {
		Expect(afero.WriteFile(fs, "/tmp/sos-collector-42.tar.xz", []byte("a"), 0o600)).To(Succeed())

		_, err := pipeline.Collect(ctx, services.CollectRequest{CaseID: "42"})
		Expect(err).NotTo(HaveOccurred())
		_, _, err = pipeline.Upload(ctx, "42", false)
		Expect(err).NotTo(HaveOccurred())
		_, err = pipeline.Cleanup(ctx, "42")
		Expect(err).NotTo(HaveOccurred())

		runs, err := pipeline.Runs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(3))

		actions := make([]models.RunAction, 0, len(runs))
		for _, r := range runs {
			actions = append(actions, r.Action)
			Expect(r.CaseID).To(Equal("42"))
		}
		Expect(actions).To(ConsistOf(models.RunActionCollect, models.RunActionUpload, models.RunActionCleanup))
	})

	It("should record a failed resolution with its error", func() {
		failing := services.NewPipeline(&fakeResolver{err: &services.ModelNotFoundError{Name: "bogus", Available: []string{"openstack"}}},
			services.NewSosCollector(config.Sos{TmpDir: "/tmp"}, fs), up,
			services.NewCleanupManager(fs), st, "openstack", 0)

		_, err := failing.Collect(ctx, services.CollectRequest{CaseID: "42", Model: "bogus"})
		Expect(err).To(HaveOccurred())

		runs, err := pipeline.Runs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(1))
		Expect(runs[0].Success).To(BeFalse())
		Expect(runs[0].Error).To(ContainSubstring("bogus"))
	})
})
