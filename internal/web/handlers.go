package web

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/cardimport/internal/core"
	"github.com/JonMunkholm/cardimport/internal/deck"
	"github.com/go-chi/chi/v5"
)

// multipartSlack is allowed on top of the file limit for form overhead.
const multipartSlack = 1 << 20

// maxDeckBytes bounds deck list request bodies.
const maxDeckBytes = 1 << 20

// ImportResponse is the JSON body returned by the import endpoint.
type ImportResponse struct {
	ID          string                         `json:"id,omitempty"`
	Kind        string                         `json:"kind"`
	FileName    string                         `json:"fileName"`
	Fingerprint string                         `json:"fingerprint"`
	OK          bool                           `json:"ok"`
	Records     int                            `json:"records"`
	Saved       int                            `json:"saved"`
	DryRun      bool                           `json:"dryRun,omitempty"`
	Defects     []core.Defect                  `json:"defects"`
	Help        map[core.Code]core.UserMessage `json:"help,omitempty"`
	DurationMs  int64                          `json:"durationMs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{
		"status":  "ok",
		"imports": s.service.Limiter().Status(),
	}
	if err := s.catalog.Ping(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = core.MapError(err).Message
	}
	writeJSON(w, status, body)
}

func (s *Server) handleListKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Kinds())
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}

// handleDownloadTemplate returns an empty CSV with the kind's header row.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	def, err := core.Lookup(kind)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.csv"`, kind))

	csvWriter := csv.NewWriter(w)
	csvWriter.Write(def.Info.Columns)
	csvWriter.Flush()
}

// handleImport runs the pipeline on the uploaded CSV and stores the result.
// The body is either raw CSV text or a multipart form with a "file" field.
// A file with defects is answered with 422 and the full defect list.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	name, data, err := s.readUpload(w, r, kind)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	opts := s.importOptions(r)
	ctx := WithRequestMetadata(r.Context(), r)

	report, err := s.service.Import(ctx, kind, name, data, opts)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	status := http.StatusOK
	if !report.Result.OK {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, toResponse(report, opts.DryRun))
}

// handlePreview analyzes a CSV without storing anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	_, data, err := s.readUpload(w, r, kind)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	result, err := s.service.Preview(r.Context(), kind, data, s.importOptions(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	limit := parseIntParam(r, "limit", core.DefaultHistoryLimit)

	runs, err := s.service.History(r.Context(), kind, limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if runs == nil {
		runs = []core.Run{}
	}

	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.Cards(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(list), "cards": list})
}

// handleValidateDeck checks a JSON deck list against the stored catalog.
// Invalid decks are answered with 422 and every rule violation.
func (s *Server) handleValidateDeck(w http.ResponseWriter, r *http.Request) {
	d, err := deck.Decode(http.MaxBytesReader(w, r.Body, maxDeckBytes))
	if err != nil {
		respondErrorJSON(w, core.UserMessage{
			Message: "Deck list is not valid JSON",
			Action:  `Send {"entries": [{"cardId": "...", "qty": 1}]}`,
			Code:    "DECK001",
		}, http.StatusBadRequest)
		return
	}

	list, err := s.catalog.Cards(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	opts := deck.Options{MergeDuplicates: parseBoolParam(r, "merge", false)}
	result := deck.Validate(d, deck.CatalogFrom(list), opts)

	status := http.StatusOK
	if !result.OK {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

// readUpload returns the file name and raw bytes of an import request.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, kind string) (string, []byte, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartSlack)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", nil, uploadError(err)
		}
		name := r.URL.Query().Get("filename")
		if name == "" {
			name = kind + ".csv"
		}
		return name, data, nil
	}

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return "", nil, uploadError(err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, core.ErrNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: over %d bytes", core.ErrInputTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", core.ErrNoFile, err)
}

// importOptions reads pipeline flags from the query, falling back to config.
func (s *Server) importOptions(r *http.Request) core.ImportOptions {
	return core.ImportOptions{
		Options: core.Options{
			StrictHeader: parseBoolParam(r, "strict", s.cfg.Import.StrictHeader),
			Trim:         parseBoolParam(r, "trim", s.cfg.Import.Trim),
		},
		Charset: r.URL.Query().Get("charset"),
		Force:   parseBoolParam(r, "force", false),
		DryRun:  parseBoolParam(r, "dry_run", false),
	}
}

func toResponse(report *core.ImportReport, dryRun bool) ImportResponse {
	resp := ImportResponse{
		ID:          report.ID,
		Kind:        report.Kind,
		FileName:    report.FileName,
		Fingerprint: report.Fingerprint,
		OK:          report.Result.OK,
		Records:     len(report.Result.Records),
		Saved:       report.Saved,
		DryRun:      dryRun,
		Defects:     report.Result.Defects,
		DurationMs:  report.Duration.Milliseconds(),
	}
	if resp.Defects == nil {
		resp.Defects = []core.Defect{}
	}
	if len(report.Result.Defects) > 0 {
		resp.Help = make(map[core.Code]core.UserMessage)
		for _, d := range report.Result.Defects {
			if _, ok := resp.Help[d.Code]; !ok {
				resp.Help[d.Code] = core.MapDefect(d)
			}
		}
	}
	return resp
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseBoolParam parses a boolean query parameter with a default value.
func parseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
