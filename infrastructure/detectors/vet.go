// Package detectors provides subprocess-backed gate.Detector adapters.
package detectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/praxisops/praxis/domain/gate"
)

// DefaultTimeout bounds a single detector subprocess.
const DefaultTimeout = 60 * time.Second

// Vet runs `go vet -json` against a repository.
type Vet struct {
	timeout time.Duration
}

// NewVet creates the vet detector.
func NewVet(timeout time.Duration) *Vet {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Vet{timeout: timeout}
}

// Name returns the detector name.
func (v *Vet) Name() string { return "go-vet" }

// Scan runs go vet and converts diagnostics into findings.
func (v *Vet) Scan(ctx context.Context, repoPath string) ([]gate.Finding, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "vet", "-json", "./...")
	cmd.Dir = repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("go vet timed out after %s", v.timeout)
	}

	// go vet emits diagnostics as JSON on stderr, one object per package
	// prefixed by a "# package" comment line.
	findings, parseErr := parseVetOutput(stderr.Bytes())
	if parseErr != nil {
		if runErr != nil {
			return nil, fmt.Errorf("go vet: %w: %s", runErr, strings.TrimSpace(stderr.String()))
		}
		return nil, parseErr
	}
	return findings, nil
}

type vetDiagnostic struct {
	Posn    string `json:"posn"`
	Message string `json:"message"`
}

func parseVetOutput(out []byte) ([]gate.Finding, error) {
	var findings []gate.Finding

	dec := json.NewDecoder(bytes.NewReader(stripComments(out)))
	for dec.More() {
		// package → analyzer → diagnostics
		var chunk map[string]map[string][]vetDiagnostic
		if err := dec.Decode(&chunk); err != nil {
			return nil, fmt.Errorf("parse go vet output: %w", err)
		}
		for _, analyzers := range chunk {
			for analyzer, diags := range analyzers {
				for _, d := range diags {
					path, line := splitPosn(d.Posn)
					ruleID := "E:" + analyzer
					findings = append(findings, gate.Finding{
						RuleID:   ruleID,
						Message:  d.Message,
						Severity: gate.MapRuleSeverity(ruleID),
						Path:     path,
						Line:     line,
					})
				}
			}
		}
	}
	return findings, nil
}

func stripComments(out []byte) []byte {
	var buf bytes.Buffer
	for _, line := range bytes.Split(out, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimSpace(line), []byte("#")) {
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// splitPosn parses "path/file.go:12:34" into path and line.
func splitPosn(posn string) (string, int) {
	parts := strings.Split(posn, ":")
	if len(parts) < 2 {
		return posn, 0
	}
	line, err := strconv.Atoi(parts[1])
	if err != nil {
		return parts[0], 0
	}
	return parts[0], line
}
