package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nisthasiemens/docshare/internal/auth"
	"github.com/nisthasiemens/docshare/internal/service"
)

// SharingHandler manages a document's share list and the share-target
// picker.
type SharingHandler struct {
	sharing *service.SharingService
	logger  *slog.Logger
}

// NewSharingHandler creates a SharingHandler.
func NewSharingHandler(sharing *service.SharingService, logger *slog.Logger) *SharingHandler {
	return &SharingHandler{
		sharing: sharing,
		logger:  logger,
	}
}

type shareRequest struct {
	UserID string `json:"userId"`
}

// HandleShare grants a user access to a document. Sharing with a user who
// already has access answers 409.
//
// HTTP: POST /api/documents/{id}/shares
// Auth: required
func (h *SharingHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.sharing.Share(r.Context(), chi.URLParam(r, "id"), req.UserID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "shared"})
}

// HandleUnshare revokes a user's access to a document.
//
// HTTP: DELETE /api/documents/{id}/shares/{userID}
// Auth: required
func (h *SharingHandler) HandleUnshare(w http.ResponseWriter, r *http.Request) {
	if err := h.sharing.Unshare(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListShares returns the users a document is currently shared with.
//
// HTTP: GET /api/documents/{id}/shares
// Auth: required
func (h *SharingHandler) HandleListShares(w http.ResponseWriter, r *http.Request) {
	users, err := h.sharing.ListShareTargets(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleShareableUsers returns everyone the current user could share a
// document with — every user but themselves.
//
// HTTP: GET /api/users/shareable
// Auth: required
func (h *SharingHandler) HandleShareableUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	users, err := h.sharing.ListShareableUsers(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
