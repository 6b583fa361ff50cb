package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/cardimport/internal/logging"
	"github.com/google/uuid"
)

// ImportTimeout bounds one import, including persistence.
var ImportTimeout = 2 * time.Minute

// ErrNoFile is returned when an import has no content at all.
var ErrNoFile = errors.New("no file provided")

// ServiceConfig holds the import defaults applied by Service.
type ServiceConfig struct {
	MaxBytes int64  // raw input limit, <= 0 disables it
	Charset  string // default input charset
	Workers  int    // default Options.Workers
}

// ImportOptions extends the pipeline options with service behaviour.
type ImportOptions struct {
	Options

	// Charset overrides the configured input charset.
	Charset string

	// Force imports content even if an identical file was imported before.
	Force bool

	// DryRun runs the pipeline without the duplicate check or persistence.
	DryRun bool
}

// Service runs imports for registered record kinds and persists the outcome.
type Service struct {
	repo    Repository
	limiter *ImportLimiter
	cfg     ServiceConfig
	now     func() time.Time
}

// NewService creates a Service. A nil repo validates imports without storing
// anything; a nil limiter uses the defaults.
func NewService(repo Repository, limiter *ImportLimiter, cfg ServiceConfig) *Service {
	if limiter == nil {
		limiter = NewImportLimiter(0, 0)
	}
	return &Service{
		repo:    repo,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Limiter exposes the concurrency limiter for status and shutdown.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Kinds returns the registered record kinds.
func (s *Service) Kinds() []KindInfo {
	defs := All()
	infos := make([]KindInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// Import decodes data, runs the pipeline for kind and, unless DryRun is set,
// stores the records and the run. Defects are reported in the returned
// report; an error means the import could not run at all.
func (s *Service) Import(ctx context.Context, kind, fileName string, data []byte, opts ImportOptions) (*ImportReport, error) {
	def, err := Lookup(kind)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoFile
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, ImportTimeout)
	defer cancel()

	start := time.Now()

	text, err := s.decode(data, opts.Charset)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{
		ID:          uuid.NewString(),
		Kind:        kind,
		FileName:    fileName,
		Fingerprint: Fingerprint(text),
	}
	logger := logging.WithFields(ctx,
		"import_id", report.ID,
		"kind", kind,
		"file", fileName,
	)

	persist := s.repo != nil && !opts.DryRun

	if persist && !opts.Force {
		prev, err := s.repo.FindImport(ctx, kind, report.Fingerprint)
		if err != nil {
			return nil, fmt.Errorf("check previous imports: %w", err)
		}
		if prev != nil {
			return nil, fmt.Errorf("%w: %s matches run %s", ErrDuplicateImport, fileName, prev.ID)
		}
	}

	report.Result = Import(text, def.Schema, s.pipelineOptions(opts))

	if persist {
		var records []Record
		if report.Result.OK {
			records = report.Result.Records
		}
		saved, err := s.repo.CommitImport(ctx, newRun(ctx, report, opts.Force, s.now()), records)
		if err != nil {
			logger.Error("commit import failed", "error", err)
			return nil, fmt.Errorf("save %s import: %w", kind, err)
		}
		report.Saved = saved
	}

	report.Duration = time.Since(start)

	logger.Info("import finished",
		"ok", report.Result.OK,
		"records", len(report.Result.Records),
		"defects", len(report.Result.Defects),
		"saved", report.Saved,
		"fingerprint", report.Fingerprint,
		"dry_run", opts.DryRun,
		"duration_ms", report.Duration.Milliseconds(),
	)

	return report, nil
}

func (s *Service) decode(data []byte, charset string) (string, error) {
	if charset == "" {
		charset = s.cfg.Charset
	}
	return DecodeInput(bytes.NewReader(data), charset, s.cfg.MaxBytes)
}

func (s *Service) pipelineOptions(opts ImportOptions) Options {
	o := opts.Options
	if o.Workers == 0 {
		o.Workers = s.cfg.Workers
	}
	return o
}
