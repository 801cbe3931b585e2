package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/extract"
)

const (
	fieldResume        = "resume"
	fieldJob           = "job_description"
	fieldCandidateName = "candidate_name"
)

var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"doc":  {},
	"txt":  {},
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{err: analysis.ErrNoResume, status: http.StatusBadRequest, code: "resume_required"},
	{err: analysis.ErrNoJobDescription, status: http.StatusBadRequest, code: "job_description_required"},
	{err: extract.ErrUnsupportedFormat, status: http.StatusUnsupportedMediaType, code: "unsupported_format"},
	{err: extract.ErrCorruptDocument, status: http.StatusUnprocessableEntity, code: "corrupt_document"},
	{err: extract.ErrNoExtractableText, status: http.StatusUnprocessableEntity, code: "no_extractable_text"},
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.MaxUploadMB << 20
	if r.ContentLength > maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload_too_large",
			fmt.Sprintf("upload exceeds %d MB", s.cfg.MaxUploadMB))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload_too_large",
				fmt.Sprintf("upload exceeds %d MB", s.cfg.MaxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "expected multipart form data")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(fieldResume)
	if err != nil {
		writeError(w, http.StatusBadRequest, "resume_required", "resume file is required")
		return
	}
	defer file.Close()

	ext := extract.ExtensionOf(header.Filename)
	if _, ok := allowedExtensions[ext]; !ok {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_format",
			"allowed formats: pdf, docx, doc, txt")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to read resume file")
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), analysis.Input{
		ResumeData:     data,
		ResumeFilename: header.Filename,
		JobDescription: r.FormValue(fieldJob),
		CandidateName:  strings.TrimSpace(r.FormValue(fieldCandidateName)),
	})
	if err != nil {
		s.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, m.err.Error())
			return
		}
	}

	s.logger.Error("analysis failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
