package services_test

import (
	"context"
	"errors"
	"os/exec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/canonical/sosreport-agent/internal/config"
	"github.com/canonical/sosreport-agent/internal/services"
)

var _ = Describe("SosCollector", func() {
	var (
		ctx       context.Context
		fs        afero.Fs
		cfg       config.Sos
		collector *services.SosCollector
	)

	BeforeEach(func() {
		ctx = context.Background()
		fs = afero.NewMemMapFs()
		cfg = config.Sos{
			Binary:  "sos",
			Command: "sos",
			TmpDir:  "/tmp",
			SSHUser: "ubuntu",
		}
		collector = services.NewSosCollector(cfg, fs)
	})

	Describe("Args", func() {
		It("should build the full argument vector", func() {
			args := collector.Args(sets.New("10.0.0.2", "10.0.0.1"), "1234", "")
			Expect(args).To(Equal([]string{
				"collect",
				"--no-local",
				"--nopasswd-sudo",
				"--batch",
				"--tmp-dir", "/tmp",
				"--sos-cmd", "sos",
				"--ssh-user", "ubuntu",
				"--case-id", "1234",
				"--nodes", "10.0.0.1,10.0.0.2",
			}))
		})

		It("should append extra arguments as discrete argv entries", func() {
			args := collector.Args(sets.New("10.0.0.1"), "1234", "--only-plugins kernel --log-size 50")
			Expect(args[len(args)-4:]).To(Equal([]string{"--only-plugins", "kernel", "--log-size", "50"}))
		})

		It("should join nodes deterministically regardless of insertion order", func() {
			first := collector.Args(sets.New("b", "a", "c"), "1", "")
			second := collector.Args(sets.New("c", "a", "b"), "1", "")
			Expect(first).To(Equal(second))
		})
	})

	Describe("Collect", func() {
		It("should succeed when the process exits zero", func() {
			var gotBinary string
			var gotArgs []string
			collector.SetExecCommand(func(ctx context.Context, name string, args ...string) *exec.Cmd {
				gotBinary = name
				gotArgs = args
				return exec.CommandContext(ctx, "/bin/sh", "-c", "exit 0")
			})

			err := collector.Collect(ctx, sets.New("10.0.0.1"), "1234", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(gotBinary).To(Equal("sos"))
			Expect(gotArgs).To(ContainElements("--case-id", "1234", "--nodes", "10.0.0.1"))
		})

		It("should return a CollectionError with the captured stderr on non-zero exit", func() {
			collector.SetExecCommand(func(ctx context.Context, name string, args ...string) *exec.Cmd {
				return exec.CommandContext(ctx, "/bin/sh", "-c", "echo 'ssh connection refused' >&2; exit 2")
			})

			err := collector.Collect(ctx, sets.New("10.0.0.1"), "1234", "")
			var collectErr *services.CollectionError
			Expect(errors.As(err, &collectErr)).To(BeTrue())
			Expect(collectErr.ExitCode).To(Equal(2))
			Expect(collectErr.Output).To(ContainSubstring("ssh connection refused"))
			Expect(err.Error()).To(ContainSubstring("exit code 2"))
		})
	})

	Describe("Reports", func() {
		It("should find files matching the case id", func() {
			Expect(afero.WriteFile(fs, "/tmp/sos-collector-42-a.tar.xz", []byte("a"), 0o600)).To(Succeed())
			Expect(afero.WriteFile(fs, "/tmp/sos-collector-42-b.tar.xz", []byte("b"), 0o600)).To(Succeed())
			Expect(afero.WriteFile(fs, "/tmp/sos-collector-99.tar.xz", []byte("c"), 0o600)).To(Succeed())
			Expect(afero.WriteFile(fs, "/tmp/unrelated-42.log", []byte("d"), 0o600)).To(Succeed())

			reports, err := collector.Reports("42")
			Expect(err).NotTo(HaveOccurred())
			Expect(reports).To(ConsistOf(
				"/tmp/sos-collector-42-a.tar.xz",
				"/tmp/sos-collector-42-b.tar.xz",
			))
		})

		It("should return empty when nothing matches", func() {
			reports, err := collector.Reports("42")
			Expect(err).NotTo(HaveOccurred())
			Expect(reports).To(BeEmpty())
		})
	})
})
