// ABOUTME: HTTP handlers for registration, login, journal entries and health
// ABOUTME: Maps service sentinel errors onto fixed JSON error responses

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2389/quill/internal/auth"
	"github.com/2389/quill/internal/journal"
	"github.com/2389/quill/internal/store"
)

// maxRequestBodySize bounds JSON request bodies.
const maxRequestBodySize = 1 << 20

// CredentialsRequest is the body of register and login requests.
// Email is accepted as an alias for Identity.
type CredentialsRequest struct {
	Identity string `json:"identity"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r CredentialsRequest) identity() string {
	if r.Identity != "" {
		return r.Identity
	}
	return r.Email
}

// CreateEntryRequest is the body of an entry creation request.
// EntryText is accepted as an alias for Text.
type CreateEntryRequest struct {
	Text      string `json:"text"`
	EntryText string `json:"entry_text"`
}

func (r CreateEntryRequest) text() string {
	if r.Text != "" {
		return r.Text
	}
	return r.EntryText
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID       int64  `json:"id"`
	Identity string `json:"identity"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

// EntryResponse is the public view of a journal entry.
type EntryResponse struct {
	ID               int64     `json:"id"`
	Text             string    `json:"text"`
	Augmentation     string    `json:"augmentation"`
	AugmentationHTML string    `json:"augmentationHtml"`
	CreatedAt        time.Time `json:"createdAt"`
}

// CreateEntryResponse is returned when an entry is created.
type CreateEntryResponse struct {
	Message string        `json:"message"`
	Entry   EntryResponse `json:"entry"`
}

// ListEntriesResponse is returned when listing entries.
type ListEntriesResponse struct {
	Entries []EntryResponse `json:"entries"`
}

func toEntryResponse(e *store.Entry) EntryResponse {
	return EntryResponse{
		ID:               e.ID,
		Text:             e.Text,
		Augmentation:     e.Augmentation,
		AugmentationHTML: journal.RenderAugmentation(e.Augmentation),
		CreatedAt:        e.CreatedAt,
	}
}

// handleRegister handles POST /auth/register.
func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !g.decodeJSON(w, r, &req) {
		return
	}

	session, err := g.accounts.Register(r.Context(), req.identity(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials),
			errors.Is(err, auth.ErrWeakPassword),
			errors.Is(err, auth.ErrPasswordTooLong),
			errors.Is(err, auth.ErrPasswordHasNUL):
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrDuplicateIdentity):
			g.sendJSONError(w, http.StatusBadRequest, "identity already registered")
		default:
			g.logger.Error("registration failed", "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	g.sendJSON(w, http.StatusCreated, AuthResponse{
		Message: "User created successfully",
		Token:   session.Token,
		Account: AccountResponse{ID: session.Account.ID, Identity: session.Account.Identity},
	})
}

// handleLogin handles POST /auth/login.
func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !g.decodeJSON(w, r, &req) {
		return
	}

	session, err := g.accounts.Login(r.Context(), req.identity(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrInvalidCredentials):
			g.sendJSONError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			g.logger.Error("login failed", "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	g.sendJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		Token:   session.Token,
		Account: AccountResponse{ID: session.Account.ID, Identity: session.Account.Identity},
	})
}

// handleCreateEntry handles POST /entries. Requires HTTPAuthMiddleware.
func (g *Gateway) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())
	if authCtx == nil {
		g.sendJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateEntryRequest
	if !g.decodeJSON(w, r, &req) {
		return
	}

	result, err := g.journal.Create(r.Context(), authCtx.AccountID, req.text())
	if err != nil {
		switch {
		case errors.Is(err, journal.ErrEmptyText):
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, journal.ErrAuthRequired):
			g.sendJSONError(w, http.StatusUnauthorized, "authentication required")
		default:
			g.sendJSONError(w, http.StatusInternalServerError, "failed to save journal entry")
		}
		return
	}

	message := "Journal entry created successfully"
	if result.Fallback {
		message = "Journal entry created (AI response unavailable)"
	}

	g.sendJSON(w, http.StatusCreated, CreateEntryResponse{
		Message: message,
		Entry:   toEntryResponse(result.Entry),
	})
}

// handleListEntries handles GET /entries. Requires HTTPAuthMiddleware.
func (g *Gateway) handleListEntries(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())
	if authCtx == nil {
		g.sendJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entries, err := g.journal.List(r.Context(), authCtx.AccountID)
	if err != nil {
		if errors.Is(err, journal.ErrAuthRequired) {
			g.sendJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		g.logger.Error("listing entries failed", "account_id", authCtx.AccountID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "failed to load journal entries")
		return
	}

	resp := ListEntriesResponse{Entries: make([]EntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toEntryResponse(e))
	}
	g.sendJSON(w, http.StatusOK, resp)
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.sendJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Quill API is running",
	})
}

// handleReady returns 200 OK if the database is reachable.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := g.store.Ping(r.Context()); err != nil {
		g.logger.Warn("readiness check failed", "error", err)
		g.sendJSONError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	g.sendJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleNotFound answers every unrouted request.
func (g *Gateway) handleNotFound(w http.ResponseWriter, r *http.Request) {
	g.sendJSONError(w, http.StatusNotFound, "route not found")
}

// decodeJSON decodes a bounded request body into v, writing a 400 on failure.
func (g *Gateway) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			g.sendJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (g *Gateway) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Debug("writing response failed", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
