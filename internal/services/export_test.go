package services

import (
	"context"
	"os/exec"

	"k8s.io/apimachinery/pkg/util/sets"
)

// SetExecCommand replaces the process launcher so tests can observe or fake
// the sos collect invocation.
func (c *SosCollector) SetExecCommand(f func(ctx context.Context, name string, args ...string) *exec.Cmd) {
	c.execCommand = f
}

// Args exposes the argument vector builder.
func (c *SosCollector) Args(nodes sets.Set[string], caseID, extraArgs string) []string {
	return c.args(nodes, caseID, extraArgs)
}
