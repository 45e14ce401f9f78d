package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fieldops/server/internal/importer"
	"github.com/fieldops/server/internal/logging"
	"github.com/fieldops/server/internal/rowsource"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleListKinds returns the supported import kinds.
func (s *Server) handleListKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]importer.ImportKind{"kinds": importer.Kinds()})
}

// handleStartImport accepts a multipart spreadsheet upload and starts an
// asynchronous batch run for the kind in the URL. Responds with the run ID;
// progress and the final report are fetched separately.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	kind, err := importer.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	companyID, err := uuid.Parse(r.FormValue("company_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company_id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	rows, err := rowsource.FromUpload(header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID, err := s.service.StartImport(companyID, kind, rows)
	if err != nil {
		if errors.Is(err, importer.ErrTooManyRuns) {
			w.Header().Set("Retry-After", "30")
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logging.FromContext(r.Context()).Info("import accepted",
		"run_id", runID,
		"kind", kind,
		"file", header.Filename,
		"rows", len(rows),
	)

	writeJSON(w, map[string]string{"run_id": runID})
}

// handleRunHistory lists a company's recent import runs, newest first.
func (s *Server) handleRunHistory(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.URL.Query().Get("company_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid company_id")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := s.service.RunHistory(r.Context(), companyID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load import history")
		logging.FromContext(r.Context()).Error("run history query", "error", err)
		return
	}
	if records == nil {
		records = []importer.RunRecord{}
	}

	writeJSON(w, map[string][]importer.RunRecord{"runs": records})
}

// handleImportProgress streams run progress via Server-Sent Events.
func (s *Server) handleImportProgress(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	progressCh, err := s.service.SubscribeProgress(runID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	for {
		select {
		case progress, ok := <-progressCh:
			if !ok {
				fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			fmt.Fprintf(w, "event: progress\ndata: {\"processed\":%d,\"total\":%d}\n\n",
				progress.Processed, progress.Total)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// handleImportResult blocks until the run completes and returns the batch
// result.
func (s *Server) handleImportResult(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	result, err := s.service.Result(runID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, result)
}
