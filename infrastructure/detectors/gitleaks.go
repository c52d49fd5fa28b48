package detectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/praxisops/praxis/domain/gate"
	"github.com/praxisops/praxis/domain/severity"
)

// Gitleaks runs the gitleaks secret scanner. Every leak is a CRITICAL
// finding.
type Gitleaks struct {
	timeout time.Duration
}

// NewGitleaks creates the secrets detector.
func NewGitleaks(timeout time.Duration) *Gitleaks {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gitleaks{timeout: timeout}
}

// Name returns the detector name.
func (g *Gitleaks) Name() string { return "gitleaks" }

type gitleaksFinding struct {
	RuleID      string `json:"RuleID"`
	Description string `json:"Description"`
	File        string `json:"File"`
	StartLine   int    `json:"StartLine"`
}

// Scan runs gitleaks detect and converts its report into findings.
// Exit code 1 means leaks were found and is not an error.
func (g *Gitleaks) Scan(ctx context.Context, repoPath string) ([]gate.Finding, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	reportDir, err := os.MkdirTemp("", "gitleaks-report-")
	if err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(reportDir) }()
	reportPath := filepath.Join(reportDir, "report.json")

	cmd := exec.CommandContext(ctx, "gitleaks", "detect",
		"--source", ".",
		"--no-git",
		"--report-format", "json",
		"--report-path", reportPath,
	)
	cmd.Dir = repoPath

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if runErr := cmd.Run(); runErr != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("gitleaks timed out after %s", g.timeout)
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) || exitErr.ExitCode() != 1 {
			return nil, fmt.Errorf("gitleaks: %w: %s", runErr, strings.TrimSpace(stderr.String()))
		}
	}

	report, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, fmt.Errorf("read gitleaks report: %w", err)
	}

	var leaks []gitleaksFinding
	if err := json.Unmarshal(report, &leaks); err != nil {
		return nil, fmt.Errorf("parse gitleaks report: %w", err)
	}

	findings := make([]gate.Finding, 0, len(leaks))
	for _, leak := range leaks {
		findings = append(findings, gate.Finding{
			RuleID:   "secret:" + leak.RuleID,
			Message:  leak.Description,
			Severity: severity.Critical,
			Path:     leak.File,
			Line:     leak.StartLine,
		})
	}
	return findings, nil
}
