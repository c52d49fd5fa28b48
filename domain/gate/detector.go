package gate

import (
	"context"
	"strings"

	"github.com/praxisops/praxis/domain/severity"
)

// Detector is one scanning capability. Detectors are independent and may
// run in parallel; a detector failure degrades into a self-describing
// finding rather than failing the scan.
type Detector interface {
	Name() string
	Scan(ctx context.Context, repoPath string) ([]Finding, error)
}

// MapRuleSeverity maps a rule id's prefix code to a severity level.
func MapRuleSeverity(ruleID string) severity.Severity {
	if ruleID == "" {
		return severity.Low
	}
	switch strings.ToUpper(ruleID[:1]) {
	case "F", "E":
		return severity.Medium
	case "W", "N":
		return severity.Low
	case "C", "R":
		return severity.Low
	case "S":
		return severity.High
	default:
		return severity.Low
	}
}

// DegradedFinding converts a detector failure into a low-severity finding
// so the scan itself never fails.
func DegradedFinding(detector string, err error) Finding {
	return Finding{
		RuleID:   "DETECTOR_ERROR",
		Message:  detector + ": " + err.Error(),
		Severity: severity.Low,
		Extra:    map[string]string{"detector": detector},
	}
}
