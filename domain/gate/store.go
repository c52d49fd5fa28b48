package gate

import (
	"context"
	"errors"
)

// ErrScanNotFound indicates the requested scan does not exist.
var ErrScanNotFound = errors.New("scan not found")

// ScanStore persists scans and waivers in the document store.
type ScanStore interface {
	// SaveScan inserts the scan and returns its assigned id.
	SaveScan(ctx context.Context, scan Scan) (string, error)
	// GetScan returns a scan by id, or ErrScanNotFound.
	GetScan(ctx context.Context, id string) (Scan, error)
	// SaveWaiver inserts the waiver and returns its assigned id.
	SaveWaiver(ctx context.Context, waiver Waiver) (string, error)
}
