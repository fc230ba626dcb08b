package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/parser"
	"github.com/dgallion1/deckgen/internal/pipeline"
)

var contentTypes = map[string]string{
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"pdf":  "application/pdf",
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	req := pipeline.JobRequest{Filename: filename, Theme: strings.TrimSpace(r.FormValue("theme"))}
	if v := r.FormValue("tone"); v != "" {
		tone, ok := deck.ParseTone(v)
		if !ok {
			jsonError(w, fmt.Sprintf("tone must be Beginner, Intermediate or Expert, got %q", v), http.StatusBadRequest)
			return
		}
		req.Tone = tone
	}
	if v := r.FormValue("slide_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "slide_count must be a positive integer", http.StatusBadRequest)
			return
		}
		req.SlideCount = n
	}

	// Read file data.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job, err := pipeline.NewJob(s.orchestrator.DataDir(), req)
	if err != nil {
		s.log.Error("create job failed", "error", err)
		jsonError(w, "failed to create job", http.StatusInternalServerError)
		return
	}
	job.ContentHash = pipeline.ContentHashHex(data)
	if err := writeUpload(job.InputPath(), data); err != nil {
		s.log.Error("store upload failed", "job_id", job.ID, "error", err)
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":       job.ID,
		"status":       pipeline.JobQueued,
		"poll_url":     fmt.Sprintf("/api/decks/%s/status", job.ID),
		"download_url": fmt.Sprintf("/api/decks/%s/download", job.ID),
	})
}

func writeUpload(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Server) handleDeckStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	snaps := make([]pipeline.JobSnapshot, 0, len(jobs))
	for _, j := range jobs {
		snaps = append(snaps, j.Snapshot())
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"jobs": snaps})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "pptx"
	}
	ctype, ok := contentTypes[format]
	if !ok {
		jsonError(w, "format must be pptx or pdf", http.StatusBadRequest)
		return
	}

	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	path := job.Deliverable(format)
	if path == "" {
		switch snap := job.Snapshot(); snap.Status {
		case pipeline.JobQueued, pipeline.JobRunning:
			jsonError(w, "job is not finished", http.StatusConflict)
		default:
			jsonError(w, format+" not available for this job", http.StatusNotFound)
		}
		return
	}

	f, err := os.Open(path)
	if err != nil {
		s.log.Error("open deliverable failed", "job_id", job.ID, "path", path, "error", err)
		jsonError(w, "deliverable missing", http.StatusGone)
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		jsonError(w, "deliverable missing", http.StatusGone)
		return
	}

	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, downloadName(job, format)))
	http.ServeContent(w, r, filepath.Base(path), fi.ModTime(), f)
}

// downloadName names the file after the uploaded document.
func downloadName(job *pipeline.Job, format string) string {
	stem := strings.TrimSuffix(job.Request.Filename, filepath.Ext(job.Request.Filename))
	if stem == "" {
		stem = "presentation"
	}
	return strings.ReplaceAll(stem, `"`, "_") + "." + format
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	found, err := s.orchestrator.DeleteJob(chi.URLParam(r, "jobID"))
	switch {
	case !found:
		jsonError(w, "job not found", http.StatusNotFound)
	case errors.Is(err, pipeline.ErrJobRunning):
		jsonError(w, err.Error(), http.StatusConflict)
	case err != nil:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
