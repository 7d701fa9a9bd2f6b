package handlers

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	middleware "github.com/markdave123-py/content-processor/internal/api/middlewares"
	"github.com/markdave123-py/content-processor/internal/models"
	"github.com/markdave123-py/content-processor/internal/services"
)

// multipart envelope allowed on top of the file itself
const formOverhead = 1 << 20

type DocumentHandler struct {
	svc         *services.DocumentService
	maxFileSize int64
	logger      *slog.Logger
}

func NewDocumentHandler(svc *services.DocumentService, maxFileSize int64, logger *slog.Logger) *DocumentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentHandler{svc: svc, maxFileSize: maxFileSize, logger: logger}
}

type uploadResponse struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	ChunksCount int    `json:"chunks_count"`
	Message     string `json:"message"`
}

type messageResponse struct {
	Message     string `json:"message"`
	ChunksCount *int   `json:"chunks_count,omitempty"`
}

type chunksResponse struct {
	DocumentID string                 `json:"document_id"`
	Chunks     []models.DocumentChunk `json:"chunks"`
}

type searchResponse struct {
	DocumentID string              `json:"document_id"`
	Query      string              `json:"query"`
	Matches    []models.ChunkMatch `json:"matches"`
}

// requestUser prefers the authenticated user over a client-supplied user_id.
func requestUser(r *http.Request) *string {
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		return &id
	}
	if id := r.FormValue("user_id"); id != "" {
		return &id
	}
	return nil
}

// UploadDocument validates, extracts, processes and stores one multipart "file".
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+formOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	doc, err := h.svc.Upload(r.Context(), services.UploadRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		UserID:      requestUser(r),
	})
	if err != nil {
		respondErr(w, h.logger, "upload failed", err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		DocumentID:  doc.ID,
		Filename:    services.SanitizeFilename(header.Filename),
		Status:      "processed",
		ChunksCount: len(doc.Chunks),
		Message:     "Document uploaded and processed successfully",
	})
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.logger, "failed to load document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc.Summarize())
}

func (h *DocumentHandler) GetDocumentChunks(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.logger, "failed to load document", err)
		return
	}
	chunks := doc.Chunks
	if chunks == nil {
		chunks = []models.DocumentChunk{}
	}
	writeJSON(w, http.StatusOK, chunksResponse{DocumentID: doc.ID, Chunks: chunks})
}

// ListDocuments lists summaries newest first, filtered to the caller when known.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", services.DefaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "skip must be an integer")
		return
	}

	docs, err := h.svc.List(r.Context(), requestUser(r), limit, skip)
	if err != nil {
		respondErr(w, h.logger, "failed to list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// DownloadDocument streams the archived original upload.
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, rc, err := h.svc.OpenOriginal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.logger, "failed to open original file", err)
		return
	}
	defer rc.Close()

	contentType := doc.Metadata.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(doc.StorageKey)}))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("download interrupted", "document_id", doc.ID, "error", err)
	}
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, h.logger, "failed to delete document", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Document deleted successfully"})
}

func (h *DocumentHandler) ReprocessDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Reprocess(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, h.logger, "failed to reprocess document", err)
		return
	}
	n := len(doc.Chunks)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Document reprocessed successfully", ChunksCount: &n})
}

func (h *DocumentHandler) SearchDocument(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	id, query := chi.URLParam(r, "id"), r.URL.Query().Get("q")

	matches, err := h.svc.Search(r.Context(), id, query, limit)
	if err != nil {
		respondErr(w, h.logger, "search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{DocumentID: id, Query: query, Matches: matches})
}

func (h *DocumentHandler) SupportedFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"supported_types": h.svc.SupportedTypes()})
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
