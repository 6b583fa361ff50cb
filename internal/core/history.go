package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateImport is returned when the same content was already imported
// successfully for a kind.
var ErrDuplicateImport = errors.New("file already imported")

// DefaultHistoryLimit caps History when no limit is given.
const DefaultHistoryLimit = 50

// Run is the stored summary of one import attempt.
type Run struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	FileName    string    `json:"fileName"`
	Fingerprint string    `json:"fingerprint"`
	OK          bool      `json:"ok"`
	Records     int       `json:"records"`
	Defects     int       `json:"defects"`
	Forced      bool      `json:"forced,omitempty"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Repository persists imported records and the import history.
type Repository interface {
	// CommitImport stores a run and, for a successful run, its records in
	// one transaction and returns how many records were written. Two
	// unforced successful runs with the same kind and fingerprint fail with
	// ErrDuplicateImport, and the second writes nothing.
	CommitImport(ctx context.Context, run Run, records []Record) (int, error)

	// FindImport returns the latest unforced successful run with the
	// fingerprint, or nil when there is none.
	FindImport(ctx context.Context, kind, fingerprint string) (*Run, error)

	ListImports(ctx context.Context, kind string, limit int) ([]Run, error)

	// PruneImports deletes runs created before the cutoff.
	PruneImports(ctx context.Context, before time.Time) (int64, error)
}

// History returns the most recent runs for a kind, newest first.
func (s *Service) History(ctx context.Context, kind string, limit int) ([]Run, error) {
	if _, err := Lookup(kind); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	runs, err := s.repo.ListImports(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("list imports for %s: %w", kind, err)
	}
	return runs, nil
}

func newRun(ctx context.Context, report *ImportReport, forced bool, createdAt time.Time) Run {
	return Run{
		ID:          report.ID,
		Kind:        report.Kind,
		FileName:    report.FileName,
		Fingerprint: report.Fingerprint,
		OK:          report.Result.OK,
		Records:     len(report.Result.Records),
		Defects:     len(report.Result.Defects),
		Forced:      forced,
		IPAddress:   IPAddressFromContext(ctx),
		UserAgent:   UserAgentFromContext(ctx),
		CreatedAt:   createdAt,
	}
}
