package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxisops/praxis/domain/gate"
	"github.com/praxisops/praxis/internal/database"
)

// ScanStore is the GORM-backed gate.ScanStore.
type ScanStore struct {
	db database.Database
}

// NewScanStore creates a ScanStore.
func NewScanStore(db database.Database) *ScanStore {
	return &ScanStore{db: db}
}

// SaveScan inserts the scan and returns its assigned id.
func (s *ScanStore) SaveScan(ctx context.Context, scan gate.Scan) (string, error) {
	if scan.ID == "" {
		scan.ID = uuid.NewString()
	}
	model := ScanModel{
		ID:       scan.ID,
		Repo:     scan.Repo,
		Commit:   scan.Commit,
		TS:       scan.TS,
		Findings: toJSON(scan.Findings),
		Summary:  toJSON(scan.Summary),
	}
	if err := s.db.Session(ctx).Create(&model).Error; err != nil {
		return "", fmt.Errorf("save scan: %w", err)
	}
	return scan.ID, nil
}

// GetScan returns a scan by id.
func (s *ScanStore) GetScan(ctx context.Context, id string) (gate.Scan, error) {
	var model ScanModel
	if err := s.db.Session(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gate.Scan{}, fmt.Errorf("%w: %s", gate.ErrScanNotFound, id)
		}
		return gate.Scan{}, fmt.Errorf("get scan %s: %w", id, err)
	}
	return gate.Scan{
		ID:       model.ID,
		Repo:     model.Repo,
		Commit:   model.Commit,
		TS:       model.TS,
		Findings: fromJSON[[]gate.Finding](model.Findings),
		Summary:  fromJSON[map[string]int](model.Summary),
	}, nil
}

// SaveWaiver inserts the waiver and returns its assigned id.
func (s *ScanStore) SaveWaiver(ctx context.Context, waiver gate.Waiver) (string, error) {
	if waiver.ID == "" {
		waiver.ID = uuid.NewString()
	}
	model := WaiverModel{
		ID:                 waiver.ID,
		FindingFingerprint: waiver.FindingFingerprint,
		Justification:      waiver.Justification,
		Owner:              waiver.Owner,
		ExpiresAt:          waiver.ExpiresAt,
		CreatedAt:          waiver.CreatedAt,
	}
	if err := s.db.Session(ctx).Create(&model).Error; err != nil {
		return "", fmt.Errorf("save waiver: %w", err)
	}
	return waiver.ID, nil
}
