package gate

import (
	"time"

	"github.com/praxisops/praxis/domain/severity"
)

// Scan is the persisted outcome of one gate invocation.
type Scan struct {
	ID       string         `json:"id,omitempty"`
	Repo     string         `json:"repo"`
	Commit   string         `json:"commit"`
	TS       time.Time      `json:"ts"`
	Findings []Finding      `json:"findings"`
	Summary  map[string]int `json:"summary,omitempty"`
}

// NewScan creates a Scan with its per-severity summary counts.
func NewScan(repo, commit string, ts time.Time, findings []Finding) Scan {
	return Scan{
		Repo:     repo,
		Commit:   commit,
		TS:       ts.UTC(),
		Findings: findings,
		Summary:  Summarize(findings),
	}
}

// Summarize counts findings per severity level.
func Summarize(findings []Finding) map[string]int {
	summary := make(map[string]int, len(severity.All()))
	for _, f := range findings {
		summary[f.Severity.String()]++
	}
	return summary
}

// Baseline is a persisted set of known, accepted finding fingerprints.
type Baseline struct {
	Repo         string   `json:"repo"`
	Commit       string   `json:"commit"`
	Fingerprints []string `json:"fingerprints"`
}

// Contains reports whether the fingerprint is part of the baseline.
func (b Baseline) Contains(fingerprint string) bool {
	for _, fp := range b.Fingerprints {
		if fp == fingerprint {
			return true
		}
	}
	return false
}

// Waiver records an accepted finding. Waivers are persisted for audit
// but not enforced by the verdict.
type Waiver struct {
	ID                 string    `json:"id,omitempty"`
	FindingFingerprint string    `json:"finding_fingerprint"`
	Justification      string    `json:"justification"`
	Owner              string    `json:"owner"`
	ExpiresAt          time.Time `json:"expires_at"`
	CreatedAt          time.Time `json:"created_at"`
}
