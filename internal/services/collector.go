package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/canonical/sosreport-agent/internal/config"
)

// reportPrefix is the name prefix of every file sos collect leaves behind,
// used as part of the discovery glob.
const reportPrefix = "sos"

// SosCollector runs sos collect against a node set and discovers the
// reports it leaves in the temp directory. The two are decoupled on
// purpose: sos collect reports nothing structured back, so discovery goes
// through the filesystem naming convention.
type SosCollector struct {
	cfg config.Sos
	fs  afero.Fs

	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewSosCollector(cfg config.Sos, fs afero.Fs) *SosCollector {
	return &SosCollector{
		cfg:         cfg,
		fs:          fs,
		execCommand: exec.CommandContext,
	}
}

// Collect invokes sos collect against the given nodes. It blocks for the
// full duration of the external process; bound it with the context. A
// non-zero exit is returned as a CollectionError carrying the captured
// stderr.
func (c *SosCollector) Collect(ctx context.Context, nodes sets.Set[string], caseID, extraArgs string) error {
	args := c.args(nodes, caseID, extraArgs)
	zap.S().Infow("running sos collect", "binary", c.cfg.Binary, "args", args)

	var stderr bytes.Buffer
	cmd := c.execCommand(ctx, c.cfg.Binary, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &CollectionError{ExitCode: exitCode, Output: stderr.String(), Err: err}
	}
	return nil
}

// args builds the argument vector for the sos collect invocation. The
// extra arguments are split on whitespace and appended as discrete argv
// entries; nothing here ever reaches a shell.
func (c *SosCollector) args(nodes sets.Set[string], caseID, extraArgs string) []string {
	args := []string{
		"collect",
		"--no-local",
		"--nopasswd-sudo",
		"--batch",
		"--tmp-dir", c.cfg.TmpDir,
		"--sos-cmd", c.cfg.Command,
		"--ssh-user", c.cfg.SSHUser,
		"--case-id", caseID,
		"--nodes", strings.Join(sets.List(nodes), ","),
	}
	return append(args, strings.Fields(extraArgs)...)
}

// Reports returns the local report files matching the case id. An empty
// result is not an error; it just means the collection produced nothing
// (or was never run).
func (c *SosCollector) Reports(caseID string) ([]string, error) {
	pattern := filepath.Join(c.cfg.TmpDir, reportPrefix+"*"+caseID+"*")
	return afero.Glob(c.fs, pattern)
}
