package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"time"

	"github.com/nisthasiemens/docshare/internal/auth"
	"github.com/nisthasiemens/docshare/internal/service"
)

// IdentityHandler manages registration, login/logout, and user management.
//
// Login does two things on success: the service persists the CurrentUser
// snapshot, and the handler issues a JWT session cookie so later requests
// can be authenticated without a database read. Logout undoes both.
type IdentityHandler struct {
	identity *service.IdentityService
	tokens   *auth.TokenService
	logger   *slog.Logger
}

// NewIdentityHandler creates an IdentityHandler.
func NewIdentityHandler(identity *service.IdentityService, tokens *auth.TokenService, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{
		identity: identity,
		tokens:   tokens,
		logger:   logger,
	}
}

type registerRequest struct {
	UserName        string `json:"userName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/register
func (h *IdentityHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	user, err := h.identity.Register(r.Context(), req.UserName, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates and opens a session.
//
// HTTP: POST /api/login
func (h *IdentityHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	user, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	tokenStr, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.Error("login: token generation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	// HttpOnly keeps the token out of reach of page scripts; SameSite=Lax
	// keeps it off cross-site POSTs.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int(auth.DefaultTokenLifetime / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, user)
}

// HandleLogout clears the session snapshot and deletes the cookie.
//
// HTTP: POST /api/logout
//
// The response carries a one-shot status the view renders as its
// "you have been logged out" banner.
func (h *IdentityHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // delete immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleMe returns the currently logged-in user's snapshot.
//
// HTTP: GET /api/me
// Auth: required
func (h *IdentityHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.CurrentUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleListUsers returns every registered user, for the user-management
// table.
//
// HTTP: GET /api/users
// Auth: required
func (h *IdentityHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.identity.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type editUserRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

// HandleEditUser updates a user's name and email.
//
// HTTP: PUT /api/users/{id}
// Auth: required
func (h *IdentityHandler) HandleEditUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req editUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	user, err := h.identity.EditUser(r.Context(), id, req.UserName, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteUser removes a user account. The services leave the deleted
// user's uploads and received shares in place.
//
// HTTP: DELETE /api/users/{id}
// Auth: required
func (h *IdentityHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
