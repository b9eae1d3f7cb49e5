// Package auth provides authentication for quill.
//
// # Passwords
//
// BcryptHasher hashes passwords with bcrypt at a fixed cost. Registration
// additionally enforces CheckPasswordStrength; login does not.
//
// # Session Tokens
//
// JWTIssuer issues HS256 tokens valid for TokenTTL and verifies them into
// typed Claims. The signing secret must be at least MinSecretLength bytes.
// Tokens cannot be revoked; they stay valid until they expire.
//
// # HTTP Middleware
//
//	mux.Handle("GET /entries", auth.HTTPAuthMiddleware(issuer, logger)(handler))
//
// The middleware attaches an AuthContext retrievable with FromContext.
//
// # Account Service
//
// Service.Register and Service.Login combine the store, hasher and issuer.
// Login never distinguishes an unknown identity from a wrong password.
package auth
