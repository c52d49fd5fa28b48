// Package gate orchestrates detector runs, baseline comparison, and
// verdict evaluation.
package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/praxisops/praxis/domain/gate"
	"github.com/praxisops/praxis/domain/severity"
	"github.com/praxisops/praxis/internal/log"
)

// Service runs scans and persists results.
type Service struct {
	detectors []gate.Detector
	store     gate.ScanStore
	logger    *log.Logger
	now       func() time.Time
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithStore enables scan persistence.
func WithStore(store gate.ScanStore) ServiceOption {
	return func(s *Service) { s.store = store }
}

// NewService creates a gate Service over the given detectors.
func NewService(detectors []gate.Detector, logger *log.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		detectors: detectors,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs every detector in parallel and merges their findings into a
// Scan. Detector failures degrade into low-severity findings; the scan
// itself never fails on detector errors.
func (s *Service) Scan(ctx context.Context, repoPath, commit string) (gate.Scan, error) {
	var (
		mu       sync.Mutex
		findings []gate.Finding
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, detector := range s.detectors {
		g.Go(func() error {
			found, err := detector.Scan(gctx, repoPath)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.WarnContext(ctx, "detector degraded",
					"detector", detector.Name(),
					"error", err,
				)
				findings = append(findings, gate.DegradedFinding(detector.Name(), err))
				return nil
			}
			findings = append(findings, found...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return gate.Scan{}, err
	}

	// Detectors finish in arbitrary order; sort for a stable report.
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Path != findings[j].Path {
			return findings[i].Path < findings[j].Path
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].RuleID < findings[j].RuleID
	})

	return gate.NewScan(repoPath, commit, s.now(), findings), nil
}

// Verdict evaluates a scan against an optional baseline and threshold.
func (s *Service) Verdict(scan gate.Scan, baseline *gate.Baseline, failOn severity.Severity) gate.Verdict {
	return gate.Evaluate(scan.Findings, baseline, failOn)
}

// Persist stores the scan in the document store and returns its id.
func (s *Service) Persist(ctx context.Context, scan gate.Scan) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("no scan store configured")
	}
	id, err := s.store.SaveScan(ctx, scan)
	if err != nil {
		return "", fmt.Errorf("persist scan: %w", err)
	}
	s.logger.InfoContext(ctx, "scan persisted", "scan_id", id, "findings", len(scan.Findings))
	return id, nil
}

// LoadBaseline reads a baseline JSON file.
func LoadBaseline(path string) (*gate.Baseline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baseline %s: %w", path, err)
	}
	var baseline gate.Baseline
	if err := json.Unmarshal(raw, &baseline); err != nil {
		return nil, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	return &baseline, nil
}
