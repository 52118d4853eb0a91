package web

import (
	"io"
	"net/http"

	"github.com/contractreg/contractreg/internal/importer"
	"github.com/contractreg/contractreg/internal/logging"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is headroom added on top of the configured workbook size
// limit so the multipart framing itself does not trip the body cap.
const multipartOverhead = 1 << 20

// previewResponse is the reviewable slice of a processed import. Issue lists
// are capped; the counts carry the full totals.
type previewResponse struct {
	Summary       importer.Summary    `json:"summary"`
	Errors        []importer.RowIssue `json:"errors"`
	Warnings      []importer.RowIssue `json:"warnings"`
	ErrorsTotal   int                 `json:"errorsTotal"`
	WarningsTotal int                 `json:"warningsTotal"`
}

// analyzeResponse describes an import session awaiting review: the workbook's
// sheets, the current mapping and the preview it produces.
type analyzeResponse struct {
	SessionID string            `json:"sessionId"`
	FileName  string            `json:"fileName"`
	Sheets    []importer.Sheet  `json:"sheets"`
	SheetName string            `json:"sheetName"`
	Mapping   *importer.Mapping `json:"mapping"`
	Preview   previewResponse   `json:"preview"`
}

// handleStartImport accepts a workbook upload, discovers its sheets,
// suggests a column mapping for the default sheet and returns a full
// preview. Nothing is written to the repository; the caller reviews the
// preview and either commits or discards the session.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read upload: "+err.Error())
		return
	}

	workbook, err := importer.Open(header.Filename, data, s.cfg.Import.MaxFileSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	sess, err := s.imports.Begin(workbook)
	if err != nil {
		respondError(w, r, err)
		return
	}

	sheet := workbook.DefaultSheet()

	sess.mu.Lock()
	if err := s.refreshPreviewLocked(r, sess, sheet.Name, nil); err != nil {
		sess.mu.Unlock()
		_ = s.imports.Finish(sess.ID)
		respondError(w, r, err)
		return
	}
	resp := s.analyzeResponseLocked(sess)
	totalRows := sess.Preview.Summary.TotalRows
	sess.mu.Unlock()

	logging.FromContext(r.Context()).Info("import session started",
		"session", sess.ID,
		"file", workbook.FileName(),
		"sheet", resp.SheetName,
		"rows", totalRows,
	)
	writeJSON(w, http.StatusOK, resp)
}

// mappingRequest adjusts the active session before commit: switch the source
// sheet, or pin fields to columns by letter. An empty letter clears a field.
type mappingRequest struct {
	SheetName string            `json:"sheetName,omitempty"`
	Overrides map[string]string `json:"overrides,omitempty"`
}

// handleUpdateMapping re-runs mapping suggestion and preview after a sheet
// switch or manual column overrides.
func (s *Server) handleUpdateMapping(w http.ResponseWriter, r *http.Request) {
	sess, err := s.imports.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req mappingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	overrides := make(map[importer.Field]string, len(req.Overrides))
	for field, letter := range req.Overrides {
		overrides[importer.Field(field)] = letter
	}

	sess.mu.Lock()
	if sess.finished {
		sess.mu.Unlock()
		respondError(w, r, ErrSessionNotFound)
		return
	}

	sheetName := sess.SheetName
	if req.SheetName != "" {
		sheetName = req.SheetName
	}

	if err := s.refreshPreviewLocked(r, sess, sheetName, overrides); err != nil {
		sess.mu.Unlock()
		respondError(w, r, err)
		return
	}
	resp := s.analyzeResponseLocked(sess)
	sess.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// commitResponse reports the repository outcome of a committed import.
type commitResponse struct {
	Summary  importer.Summary    `json:"summary"`
	Inserted int                 `json:"inserted"`
	Replaced int                 `json:"replaced"`
	Failed   int                 `json:"failed"`
	Errors   []importer.RowIssue `json:"errors"`
	Warnings []importer.RowIssue `json:"warnings"`
}

// handleCommitImport writes the previewed records to the repository in one
// bulk operation and closes the session. Records matching an existing
// (businessId, sheet) pair replace that record and count as duplicates, so
// committing the same workbook twice leaves the collection size unchanged.
func (s *Server) handleCommitImport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.imports.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	sess.mu.Lock()
	if sess.finished {
		sess.mu.Unlock()
		respondError(w, r, ErrSessionNotFound)
		return
	}
	result := sess.Preview
	sheetName := sess.SheetName

	bulk, err := s.repo.AddMany(r.Context(), result.Records)
	if err != nil {
		sess.mu.Unlock()
		respondError(w, r, err)
		return
	}
	sess.finished = true
	sess.mu.Unlock()
	_ = s.imports.Finish(sess.ID)

	summary := result.Summary
	summary.DuplicateCount += len(bulk.Replaced)
	summary.SuccessCount = len(bulk.Inserted) + len(bulk.Replaced)
	summary.ErrorCount += len(bulk.Failed)

	logging.FromContext(r.Context()).Info("import committed",
		"session", sess.ID,
		"file", sess.Session.FileName(),
		"sheet", sheetName,
		"inserted", len(bulk.Inserted),
		"replaced", len(bulk.Replaced),
		"failed", len(bulk.Failed),
	)

	max := s.cfg.Import.MaxPreviewIssues
	writeJSON(w, http.StatusOK, commitResponse{
		Summary:  summary,
		Inserted: len(bulk.Inserted),
		Replaced: len(bulk.Replaced),
		Failed:   len(bulk.Failed),
		Errors:   capIssues(result.Errors, max),
		Warnings: capIssues(result.Warnings, max),
	})
}

// handleDiscardImport abandons the session without touching the repository.
func (s *Server) handleDiscardImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.imports.Finish(id); err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("import session discarded", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

// refreshPreviewLocked recomputes the session's mapping and preview for the
// given sheet, applying any manual overrides on top of the suggestion.
// Overrides are staged on a copy of the mapping, so a failed request leaves
// the session exactly as it was. The caller must hold sess.mu.
func (s *Server) refreshPreviewLocked(r *http.Request, sess *importSession, sheetName string, overrides map[importer.Field]string) error {
	var mapping *importer.Mapping
	if sess.Mapping == nil || sheetName != sess.SheetName {
		suggested, err := sess.Session.SuggestMapping(sheetName)
		if err != nil {
			return err
		}
		mapping = suggested
	} else {
		mapping = sess.Mapping.Clone()
	}

	if len(overrides) > 0 {
		if err := sess.Session.ApplyOverrides(mapping, overrides); err != nil {
			return err
		}
	}

	result, err := sess.Session.Process(r.Context(), mapping, importer.ProcessOptions{})
	if err != nil {
		return err
	}

	sess.SheetName = sheetName
	sess.Mapping = mapping
	sess.Preview = result
	return nil
}

// analyzeResponseLocked snapshots the session state for the response body.
// The caller must hold sess.mu.
func (s *Server) analyzeResponseLocked(sess *importSession) analyzeResponse {
	max := s.cfg.Import.MaxPreviewIssues
	return analyzeResponse{
		SessionID: sess.ID,
		FileName:  sess.Session.FileName(),
		Sheets:    sess.Session.Sheets(),
		SheetName: sess.SheetName,
		Mapping:   sess.Mapping,
		Preview: previewResponse{
			Summary:       sess.Preview.Summary,
			Errors:        capIssues(sess.Preview.Errors, max),
			Warnings:      capIssues(sess.Preview.Warnings, max),
			ErrorsTotal:   len(sess.Preview.Errors),
			WarningsTotal: len(sess.Preview.Warnings),
		},
	}
}

func capIssues(issues []importer.RowIssue, max int) []importer.RowIssue {
	if len(issues) <= max {
		return issues
	}
	return issues[:max]
}
