// Package gate provides the quality-gate domain: findings with stable
// fingerprints, scans, baselines, and the severity-gated verdict.
package gate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/praxisops/praxis/domain/severity"
)

// Finding is one detector result.
type Finding struct {
	ID       string            `json:"id,omitempty"`
	RuleID   string            `json:"rule_id"`
	Message  string            `json:"message"`
	Severity severity.Severity `json:"severity"`
	Path     string            `json:"path,omitempty"`
	Line     int               `json:"line,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Fingerprint derives the finding's stable identity. Two findings with
// equal rule_id, message, severity, path, and line always share a
// fingerprint; ID and Extra do not participate.
func (f Finding) Fingerprint() string {
	canonical := fmt.Sprintf(
		"line=%d|message=%s|path=%s|rule_id=%s|severity=%s",
		f.Line, f.Message, f.Path, f.RuleID, f.Severity,
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
