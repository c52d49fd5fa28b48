package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/praxisops/praxis/domain/gate"
)

// ScanStore is an in-memory gate.ScanStore.
type ScanStore struct {
	mu      sync.RWMutex
	scans   map[string]gate.Scan
	waivers map[string]gate.Waiver
}

// NewScanStore creates an empty ScanStore.
func NewScanStore() *ScanStore {
	return &ScanStore{
		scans:   make(map[string]gate.Scan),
		waivers: make(map[string]gate.Waiver),
	}
}

// SaveScan inserts the scan under a generated id.
func (s *ScanStore) SaveScan(_ context.Context, scan gate.Scan) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if scan.ID == "" {
		scan.ID = uuid.NewString()
	}
	s.scans[scan.ID] = scan
	return scan.ID, nil
}

// GetScan returns a scan by id.
func (s *ScanStore) GetScan(_ context.Context, id string) (gate.Scan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scan, ok := s.scans[id]
	if !ok {
		return gate.Scan{}, fmt.Errorf("%w: %s", gate.ErrScanNotFound, id)
	}
	return scan, nil
}

// SaveWaiver inserts the waiver under a generated id.
func (s *ScanStore) SaveWaiver(_ context.Context, waiver gate.Waiver) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if waiver.ID == "" {
		waiver.ID = uuid.NewString()
	}
	s.waivers[waiver.ID] = waiver
	return waiver.ID, nil
}
