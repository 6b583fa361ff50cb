package core

import (
	"context"
	"time"
)

// PreviewSummary contains the counts shown before committing an import.
type PreviewSummary struct {
	TotalRows     int          `json:"totalRows"`
	ValidRows     int          `json:"validRows"`
	DefectRows    int          `json:"defectRows"`
	HeaderDefects int          `json:"headerDefects"`
	ByCode        map[Code]int `json:"byCode"`
}

// PreviewResponse is a read-only analysis of an upload.
type PreviewResponse struct {
	Kind             string         `json:"kind"`
	Fingerprint      string         `json:"fingerprint"`
	OK               bool           `json:"ok"`
	Summary          PreviewSummary `json:"summary"`
	RecordSamples    []Record       `json:"recordSamples"`
	DefectSamples    []Defect       `json:"defectSamples"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
}

const (
	maxRecordSamples = 10
	maxDefectSamples = 20
)

// Preview runs the pipeline without persisting and summarizes the outcome.
// Unlike Import, valid rows are sampled even when other rows have defects.
func (s *Service) Preview(ctx context.Context, kind string, data []byte, opts ImportOptions) (*PreviewResponse, error) {
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

	start := time.Now()

	text, err := s.decode(data, opts.Charset)
	if err != nil {
		return nil, err
	}

	resp := &PreviewResponse{
		Kind:        kind,
		Fingerprint: Fingerprint(text),
		Summary:     PreviewSummary{ByCode: make(map[Code]int)},
	}

	a := analyze(text, def.Schema, s.pipelineOptions(opts))
	if a.fatal != nil {
		resp.Summary.ByCode[a.fatal.Code] = 1
		resp.DefectSamples = []Defect{*a.fatal}
		resp.ProcessingTimeMs = time.Since(start).Milliseconds()
		return resp, nil
	}

	defects := a.header
	resp.Summary.HeaderDefects = len(a.header)
	resp.Summary.TotalRows = len(a.outcomes)
	for _, o := range a.outcomes {
		if len(o.defects) > 0 {
			resp.Summary.DefectRows++
			defects = append(defects, o.defects...)
			continue
		}
		resp.Summary.ValidRows++
		if len(resp.RecordSamples) < maxRecordSamples {
			resp.RecordSamples = append(resp.RecordSamples, o.record)
		}
	}
	for _, d := range defects {
		resp.Summary.ByCode[d.Code]++
	}

	resp.OK = len(defects) == 0
	resp.DefectSamples = head(defects, maxDefectSamples)
	resp.ProcessingTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}

func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
