// ABOUTME: HTTP middleware for JWT authentication on protected endpoints
// ABOUTME: Extracts the bearer token, verifies it, and adds the account to context

package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// Messages returned to clients. The specific rejection reason is only logged.
const (
	msgAuthRequired      = "authentication required"
	msgInvalidCredential = "invalid or expired credential"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and a reason for logging (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization header format"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// HTTPAuthMiddleware creates an HTTP middleware that requires a valid session token.
// Requests without a token get 401 "authentication required"; requests whose
// token fails verification get 401 "invalid or expired credential".
func HTTPAuthMiddleware(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("component", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, reason := extractBearerToken(r.Header.Get("Authorization"))
			if reason != "" {
				logger.Debug("rejecting request", "path", r.URL.Path, "reason", reason)
				writeAuthError(w, msgAuthRequired)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("rejecting request", "path", r.URL.Path, "reason", err.Error())
				writeAuthError(w, msgInvalidCredential)
				return
			}

			authCtx := &AuthContext{
				AccountID: claims.AccountID,
				Identity:  claims.Identity,
			}
			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), authCtx)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
