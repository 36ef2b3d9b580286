package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/pmorchard/polis-api/internal/api/shared"
	"github.com/pmorchard/polis-api/internal/ingest"
	"github.com/pmorchard/polis-api/internal/platform/logger"
)

// maxUploadBytes caps the multipart body the upload endpoint accepts.
const maxUploadBytes = 64 << 20

// IngestRunner runs one isolated ingestion unit for the given file and
// reports the number of rows it processed.
type IngestRunner interface {
	Run(ctx context.Context, in ingest.Input) (int, error)
}

// UploadHandler accepts a policy data file and hands it to the ingestion
// unit. The uploaded bytes are spooled to a temporary file which is
// removed once the unit terminates, whatever the outcome.
type UploadHandler struct {
	runner    IngestRunner
	uploadDir string
}

// NewUploadHandler creates an UploadHandler that spools uploads into
// uploadDir before handing them to runner.
func NewUploadHandler(runner IngestRunner, uploadDir string) *UploadHandler {
	return &UploadHandler{
		runner:    runner,
		uploadDir: uploadDir,
	}
}

// UploadResponse is the success payload of the upload endpoint.
type UploadResponse struct {
	Message       string `json:"message"`
	RowsProcessed int    `json:"rows_processed"`
}

// UploadFile handles POST /api/uploads.
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "A file is required")
		return
	}
	defer func() { _ = file.Close() }()

	tmpPath, err := h.spool(file)
	if err != nil {
		log.Error("failed to spool uploaded file", "error", err, "file", header.Filename)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to store uploaded file")
		return
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			log.Warn("failed to remove spooled upload", "error", err, "path", tmpPath)
		}
	}()

	rows, err := h.runner.Run(r.Context(), ingest.Input{
		FilePath:     tmpPath,
		OriginalName: header.Filename,
	})
	if err != nil {
		log.Error("ingestion failed", "error", err, "file", header.Filename)
		shared.RespondWithError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info("file ingested", "file", header.Filename, "rows_processed", rows)

	shared.RespondWithJSON(w, r, http.StatusOK, UploadResponse{
		Message:       "File processed and data inserted",
		RowsProcessed: rows,
	})
}

// spool copies the uploaded stream into a fresh file under uploadDir and
// returns its path.
func (h *UploadHandler) spool(src io.Reader) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(h.uploadDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return tmp.Name(), nil
}
