package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/praxisops/praxis/domain/severity"
)

func highFinding() Finding {
	return Finding{RuleID: "r", Message: "m", Severity: severity.High, Path: "a", Line: 1}
}

func TestFingerprintStable(t *testing.T) {
	f1 := highFinding()
	f2 := highFinding()
	f2.ID = "other-id"
	f2.Extra = map[string]string{"k": "v"}

	assert.Equal(t, f1.Fingerprint(), f2.Fingerprint())

	f3 := highFinding()
	f3.Line = 2
	assert.NotEqual(t, f1.Fingerprint(), f3.Fingerprint())
}

func TestVerdictBaselinePass(t *testing.T) {
	f := highFinding()
	baseline := &Baseline{Fingerprints: []string{f.Fingerprint()}}

	got := Evaluate([]Finding{f}, baseline, severity.High)
	assert.Equal(t, VerdictPass, got)
}

func TestVerdictFailOnNewFinding(t *testing.T) {
	got := Evaluate([]Finding{highFinding()}, &Baseline{}, severity.High)
	assert.Equal(t, VerdictFail, got)
}

func TestVerdictCriticalShortCircuit(t *testing.T) {
	f := highFinding()
	f.Severity = severity.Critical
	baseline := &Baseline{Fingerprints: []string{f.Fingerprint()}}

	// Even a baselined CRITICAL finding fails the gate.
	got := Evaluate([]Finding{f}, baseline, severity.High)
	assert.Equal(t, VerdictFail, got)
}

func TestVerdictBelowThresholdPasses(t *testing.T) {
	f := highFinding()
	f.Severity = severity.Low

	got := Evaluate([]Finding{f}, nil, severity.High)
	assert.Equal(t, VerdictPass, got)
}

func TestMapRuleSeverity(t *testing.T) {
	cases := map[string]severity.Severity{
		"F401":  severity.Medium,
		"E501":  severity.Medium,
		"W291":  severity.Low,
		"N801":  severity.Low,
		"C901":  severity.Low,
		"R1705": severity.Low,
		"S105":  severity.High,
		"X999":  severity.Low,
		"":      severity.Low,
	}
	for rule, want := range cases {
		assert.Equal(t, want, MapRuleSeverity(rule), "rule %q", rule)
	}
}

func TestSummarizeCounts(t *testing.T) {
	low := highFinding()
	low.Severity = severity.Low

	summary := Summarize([]Finding{highFinding(), highFinding(), low})
	assert.Equal(t, 2, summary["HIGH"])
	assert.Equal(t, 1, summary["LOW"])
}
