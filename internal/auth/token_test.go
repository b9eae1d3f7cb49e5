// ABOUTME: Unit tests for JWT session token issuance and verification
// ABOUTME: Tests valid tokens, tampered tokens, expiry, and missing claims

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-for-jwt-signing-32b!")

func newTestIssuer(t *testing.T) *JWTIssuer {
	t.Helper()
	issuer, err := NewJWTIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewJWTIssuer() error = %v", err)
	}
	return issuer
}

func TestNewJWTIssuer_SecretTooShort(t *testing.T) {
	for _, secret := range [][]byte{nil, []byte(""), []byte("short-secret")} {
		if _, err := NewJWTIssuer(secret); !errors.Is(err, ErrSecretTooShort) {
			t.Errorf("NewJWTIssuer(%q) error = %v, want ErrSecretTooShort", secret, err)
		}
	}
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.Issue(42, "alice@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.AccountID != 42 {
		t.Errorf("AccountID = %d, want 42", claims.AccountID)
	}
	if claims.Identity != "alice@example.com" {
		t.Errorf("Identity = %q, want alice@example.com", claims.Identity)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != TokenTTL {
		t.Errorf("validity window = %v, want %v", got, TokenTTL)
	}
}

func TestJWTIssuer_InvalidToken(t *testing.T) {
	issuer := newTestIssuer(t)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "garbage token",
			token: "not-a-jwt-token",
		},
		{
			name:  "malformed JWT",
			token: "header.payload.signature",
		},
		{
			name: "wrong secret",
			token: func() string {
				other, _ := NewJWTIssuer([]byte("a-completely-different-secret-of-32b"))
				token, _ := other.Issue(1, "alice")
				return token
			}(),
		},
		{
			name: "tampered payload",
			token: func() string {
				token, _ := issuer.Issue(1, "alice")
				parts := strings.Split(token, ".")
				forged, _ := issuer.Issue(2, "mallory")
				return parts[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]
			}(),
		},
		{
			name: "none algorithm",
			token: func() string {
				claims := jwt.MapClaims{"sub": "1", "aid": 1, "identity": "alice", "iat": time.Now().Unix(), "exp": time.Now().Add(time.Hour).Unix()}
				token, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				return token
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestJWTIssuer_MissingToken(t *testing.T) {
	issuer := newTestIssuer(t)
	if _, err := issuer.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("Verify(\"\") error = %v, want ErrMissingToken", err)
	}
}

func TestJWTIssuer_ExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t)
	issuer.now = func() time.Time { return time.Now().Add(-TokenTTL - time.Minute) }

	token, err := issuer.Issue(1, "alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTIssuer_ValidJustBeforeExpiry(t *testing.T) {
	issuer := newTestIssuer(t)
	issuer.now = func() time.Time { return time.Now().Add(-TokenTTL + time.Minute) }

	token, err := issuer.Issue(1, "alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Verify(token); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}
}

func signMapClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return token
}

func TestJWTIssuer_MissingClaims(t *testing.T) {
	issuer := newTestIssuer(t)
	now := time.Now()

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{
			name:   "missing exp",
			claims: jwt.MapClaims{"sub": "1", "aid": 1, "identity": "alice", "iat": now.Unix()},
		},
		{
			name:   "missing sub",
			claims: jwt.MapClaims{"aid": 1, "identity": "alice", "iat": now.Unix(), "exp": now.Add(time.Hour).Unix()},
		},
		{
			name:   "missing aid",
			claims: jwt.MapClaims{"sub": "1", "identity": "alice", "iat": now.Unix(), "exp": now.Add(time.Hour).Unix()},
		},
		{
			name:   "missing identity",
			claims: jwt.MapClaims{"sub": "1", "aid": 1, "iat": now.Unix(), "exp": now.Add(time.Hour).Unix()},
		},
		{
			name:   "missing iat",
			claims: jwt.MapClaims{"sub": "1", "aid": 1, "identity": "alice", "exp": now.Add(time.Hour).Unix()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(signMapClaims(t, tt.claims))
			if !errors.Is(err, ErrMissingClaim) {
				t.Errorf("Verify() error = %v, want ErrMissingClaim", err)
			}
		})
	}
}

func TestJWTIssuer_SubjectMismatch(t *testing.T) {
	issuer := newTestIssuer(t)
	now := time.Now()

	token := signMapClaims(t, jwt.MapClaims{
		"sub": "2", "aid": 1, "identity": "alice",
		"iat": now.Unix(), "exp": now.Add(time.Hour).Unix(),
	})
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}
