// Package api exposes the resume analyzer over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/analysis"
	"github.com/spigell/resume-analyzer/internal/document"
	"github.com/spigell/resume-analyzer/internal/logger"
	"github.com/spigell/resume-analyzer/internal/parser"
	"github.com/spigell/resume-analyzer/internal/records"
	"github.com/spigell/resume-analyzer/internal/similarity"
)

const (
	maxUploadSize   = 32 << 20
	resumeFormField = "resume"
	requestIDHeader = "X-Request-ID"
)

var jobFormFields = []string{
	"job_title",
	"job_description",
	"responsibilities",
	"experience",
	"skills",
	"education",
}

// Analyzer is the analysis capability served over HTTP.
type Analyzer interface {
	AnalyzeFile(ctx context.Context, path string, in parser.JobInput) (*analysis.Report, error)
}

// Server handles HTTP requests.
type Server struct {
	analyzer  Analyzer
	logger    *zap.Logger
	uploadDir string
}

// ScoreBody is the score breakdown returned by POST /analyze.
type ScoreBody struct {
	Total      float64 `json:"total"`
	Entity     float64 `json:"entity"`
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	Structure  float64 `json:"structure"`
}

// AnalyzeResponse is the body returned by POST /analyze.
type AnalyzeResponse struct {
	Score    ScoreBody       `json:"score"`
	Sections map[string]bool `json:"sections"`
	Feedback string          `json:"feedback"`
}

type ctxKey struct{}

func NewServer(analyzer Analyzer, log *zap.Logger, uploadDir string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &Server{analyzer: analyzer, logger: log, uploadDir: uploadDir}
}

// Router returns the HTTP handler with CORS and request logging applied.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return s.corsMiddleware(s.loggingMiddleware(mux))
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Resume Analyzer API is running",
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	log := loggerFrom(r.Context(), s.logger)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	raw := make(map[string]any, len(jobFormFields))
	for _, key := range jobFormFields {
		raw[key] = r.FormValue(key)
	}
	in, err := parser.DecodeJob(raw)
	if err == nil {
		err = in.Validate()
	}
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile(resumeFormField)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	if !document.IsSupported(header.Filename) {
		s.respondError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("unsupported resume format %q, expected one of %s",
				filepath.Ext(header.Filename), strings.Join(document.SupportedExtensions, ", ")))
		return
	}

	path, err := s.saveUpload(header.Filename, file)
	if err != nil {
		log.Error("failed to save upload", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}
	defer os.Remove(path)

	log.Info("analyzing resume",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
		zap.String("job_title", in.Title),
	)

	report, err := s.analyzer.AnalyzeFile(r.Context(), path, in)
	if err != nil {
		status := statusFor(err)
		log.Warn("analysis failed", zap.Int("status", status), zap.Error(err))
		s.respondError(w, status, err.Error())
		return
	}

	log.Info("analysis completed", zap.Float64("total_score", report.Score.Total))

	s.respondJSON(w, http.StatusOK, AnalyzeResponse{
		Score: ScoreBody{
			Total:      report.Score.Total,
			Entity:     report.Score.Entity,
			Skills:     report.Score.Skills,
			Experience: report.Score.Experience,
			Education:  report.Score.Education,
			Structure:  report.Score.Structure,
		},
		Sections: report.Score.Sections,
		Feedback: report.Feedback,
	})
}

// saveUpload stores the uploaded file under a generated name so client
// supplied names never reach the filesystem.
func (s *Server) saveUpload(filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.uploadDir, uuid.NewString()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return path, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, records.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, similarity.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, document.ErrExtraction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		log := logger.WithRequestID(s.logger, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), ctxKey{}, log)))

		log.Info("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(started)),
		)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func loggerFrom(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return log
	}
	return fallback
}
