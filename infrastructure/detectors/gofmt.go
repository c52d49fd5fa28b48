package detectors

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/praxisops/praxis/domain/gate"
)

// Gofmt reports files that are not gofmt-formatted.
type Gofmt struct {
	timeout time.Duration
}

// NewGofmt creates the format detector.
func NewGofmt(timeout time.Duration) *Gofmt {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gofmt{timeout: timeout}
}

// Name returns the detector name.
func (g *Gofmt) Name() string { return "gofmt" }

// Scan runs `gofmt -l` and emits one finding per unformatted file.
func (g *Gofmt) Scan(ctx context.Context, repoPath string) ([]gate.Finding, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "gofmt", "-l", ".")
	cmd.Dir = repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("gofmt timed out after %s", g.timeout)
		}
		return nil, fmt.Errorf("gofmt: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var findings []gate.Finding
	for _, file := range strings.Split(strings.TrimSpace(stdout.String()), "\n") {
		if file == "" {
			continue
		}
		ruleID := "W:gofmt"
		findings = append(findings, gate.Finding{
			RuleID:   ruleID,
			Message:  "file is not gofmt-formatted",
			Severity: gate.MapRuleSeverity(ruleID),
			Path:     file,
		})
	}
	return findings, nil
}
