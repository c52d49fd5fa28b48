package gate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisops/praxis/domain/gate"
	"github.com/praxisops/praxis/domain/severity"
	"github.com/praxisops/praxis/infrastructure/memory"
	"github.com/praxisops/praxis/internal/log"
)

type stubDetector struct {
	name     string
	findings []gate.Finding
	err      error
}

func (d stubDetector) Name() string { return d.name }

func (d stubDetector) Scan(context.Context, string) ([]gate.Finding, error) {
	return d.findings, d.err
}

func testLogger() *log.Logger {
	return log.New(log.FormatText, "ERROR")
}

func TestScanMergesDetectorFindings(t *testing.T) {
	svc := NewService([]gate.Detector{
		stubDetector{name: "lint", findings: []gate.Finding{
			{RuleID: "E100", Message: "unused", Severity: severity.Medium, Path: "a.go", Line: 3},
		}},
		stubDetector{name: "secrets", findings: []gate.Finding{
			{RuleID: "secret:aws", Message: "key", Severity: severity.Critical, Path: "a.go", Line: 1},
		}},
	}, testLogger())

	scan, err := svc.Scan(context.Background(), "/repo", "abc123")
	require.NoError(t, err)

	require.Len(t, scan.Findings, 2)
	// Stable order: path then line.
	assert.Equal(t, 1, scan.Findings[0].Line)
	assert.Equal(t, 3, scan.Findings[1].Line)
	assert.Equal(t, 1, scan.Summary["CRITICAL"])
	assert.Equal(t, 1, scan.Summary["MEDIUM"])
}

func TestScanDegradesFailingDetector(t *testing.T) {
	svc := NewService([]gate.Detector{
		stubDetector{name: "lint", findings: []gate.Finding{
			{RuleID: "E100", Message: "unused", Severity: severity.Medium},
		}},
		stubDetector{name: "broken", err: errors.New("binary not found")},
	}, testLogger())

	scan, err := svc.Scan(context.Background(), "/repo", "abc123")
	require.NoError(t, err)
	require.Len(t, scan.Findings, 2)

	var degraded *gate.Finding
	for i := range scan.Findings {
		if scan.Findings[i].RuleID == "DETECTOR_ERROR" {
			degraded = &scan.Findings[i]
		}
	}
	require.NotNil(t, degraded)
	assert.Equal(t, severity.Low, degraded.Severity)
	assert.Contains(t, degraded.Message, "broken")
}

func TestVerdictEndToEnd(t *testing.T) {
	finding := gate.Finding{RuleID: "r", Message: "m", Severity: severity.High, Path: "a", Line: 1}
	svc := NewService([]gate.Detector{stubDetector{name: "lint", findings: []gate.Finding{finding}}}, testLogger())

	scan, err := svc.Scan(context.Background(), "/repo", "abc123")
	require.NoError(t, err)

	withBaseline := svc.Verdict(scan, &gate.Baseline{Fingerprints: []string{finding.Fingerprint()}}, severity.High)
	assert.Equal(t, gate.VerdictPass, withBaseline)

	withoutBaseline := svc.Verdict(scan, nil, severity.High)
	assert.Equal(t, gate.VerdictFail, withoutBaseline)
}

func TestPersistRequiresStore(t *testing.T) {
	svc := NewService(nil, testLogger())
	_, err := svc.Persist(context.Background(), gate.Scan{})
	assert.Error(t, err)
}

func TestPersistStoresScan(t *testing.T) {
	store := memory.NewScanStore()
	svc := NewService(nil, testLogger(), WithStore(store))

	scan := gate.NewScan("/repo", "abc", time.Now(), nil)
	id, err := svc.Persist(context.Background(), scan)
	require.NoError(t, err)

	stored, err := store.GetScan(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "/repo", stored.Repo)
}

func TestLoadBaseline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"repo":"r","commit":"c","fingerprints":["fp1"]}`), 0o644))

	baseline, err := LoadBaseline(path)
	require.NoError(t, err)
	assert.True(t, baseline.Contains("fp1"))
	assert.False(t, baseline.Contains("fp2"))

	_, err = LoadBaseline(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadBaseline(bad)
	assert.Error(t, err)
}
