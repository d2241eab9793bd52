package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nisthasiemens/docshare/internal/auth"
	"github.com/nisthasiemens/docshare/internal/service"
)

// DocumentHandler manages CRUD over uploaded documents plus the download
// endpoint.
type DocumentHandler struct {
	documents *service.DocumentService
	logger    *slog.Logger
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		logger:    logger,
	}
}

type uploadRequest struct {
	FileDescription string `json:"fileDescription"`
	FileName        string `json:"fileName"`
	// Content is base64 in the JSON body; encoding/json decodes []byte
	// fields from base64 automatically.
	Content []byte `json:"content"`
}

// HandleUpload stores a new document owned by the current user.
//
// HTTP: POST /api/documents
// Auth: required
func (h *DocumentHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	upload, err := h.documents.Upload(r.Context(), req.FileDescription, req.FileName, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, upload)
}

// HandleListMine returns the current user's own uploads.
//
// HTTP: GET /api/documents
// Auth: required
func (h *DocumentHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	uploads, err := h.documents.ListOwnedBy(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploads)
}

// HandleListShared returns the documents other users shared with the
// current user.
//
// HTTP: GET /api/documents/shared
// Auth: required
func (h *DocumentHandler) HandleListShared(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	// Excluding the caller's own uploads keeps a self-share from surfacing
	// a document in its owner's "shared with me" view.
	uploads, err := h.documents.ListSharedWith(r.Context(), userID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploads)
}

// HandleGet returns one document, share list included.
//
// HTTP: GET /api/documents/{id}
// Auth: required
func (h *DocumentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	upload, err := h.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

// HandleDownload streams the decoded file bytes with their original media
// type and file name.
//
// HTTP: GET /api/documents/{id}/file
// Auth: required
func (h *DocumentHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	upload, err := h.documents.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	mediaType, content, err := h.documents.FileContent(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", upload.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		h.logger.Error("failed to write file response",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
	}
}

type editDocumentRequest struct {
	FileDescription string `json:"fileDescription"`
}

// HandleEdit changes a document's description.
//
// HTTP: PUT /api/documents/{id}
// Auth: required
func (h *DocumentHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var req editDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	upload, err := h.documents.EditDescription(r.Context(), chi.URLParam(r, "id"), req.FileDescription)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, upload)
}

// HandleDelete removes a document and its share list.
//
// HTTP: DELETE /api/documents/{id}
// Auth: required
func (h *DocumentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
