package gate

import "github.com/praxisops/praxis/domain/severity"

// Verdict is the gate's pass/fail decision.
type Verdict string

// Verdict values.
const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// Evaluate decides the verdict for a set of findings.
//
// Any CRITICAL finding fails immediately, regardless of baseline. When a
// baseline is supplied, only findings whose fingerprint is absent from
// it count against the threshold. Otherwise every finding at or above
// failOn fails the gate.
func Evaluate(findings []Finding, baseline *Baseline, failOn severity.Severity) Verdict {
	for _, f := range findings {
		if f.Severity == severity.Critical {
			return VerdictFail
		}
	}

	for _, f := range findings {
		if baseline != nil && baseline.Contains(f.Fingerprint()) {
			continue
		}
		if f.Severity.AtLeast(failOn) {
			return VerdictFail
		}
	}

	return VerdictPass
}
