// ABOUTME: JWT session token issuance and verification
// ABOUTME: Uses HS256 signing with a fixed 24h validity window and typed claims

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum signing secret length in bytes.
const MinSecretLength = 32

// TokenTTL is how long an issued session token stays valid.
const TokenTTL = 24 * time.Hour

// Token errors
var (
	ErrMissingToken   = errors.New("missing token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token expired")
	ErrMissingClaim   = errors.New("missing required claim")
	ErrSecretTooShort = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
)

// Claims is the verified payload of a session token.
type Claims struct {
	AccountID int64
	Identity  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenVerifier defines the interface for token verification
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

// sessionClaims is the wire form of Claims. Subject carries the decimal account ID.
type sessionClaims struct {
	AccountID int64  `json:"aid"`
	Identity  string `json:"identity"`
	jwt.RegisteredClaims
}

// JWTIssuer issues and verifies HS256 signed session tokens.
type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewJWTIssuer creates an issuer for the given secret.
// Returns ErrSecretTooShort if the secret is shorter than MinSecretLength.
func NewJWTIssuer(secret []byte) (*JWTIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	return &JWTIssuer{secret: secret, now: time.Now}, nil
}

// Issue creates a signed token for the account, valid for TokenTTL.
func (i *JWTIssuer) Issue(accountID int64, identity string) (string, error) {
	now := i.now()
	claims := sessionClaims{
		AccountID: accountID,
		Identity:  identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify validates the token signature, expiry and claims.
func (i *JWTIssuer) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			return nil, fmt.Errorf("%w: exp", ErrMissingClaim)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	if claims.AccountID <= 0 {
		return nil, fmt.Errorf("%w: aid", ErrMissingClaim)
	}
	if claims.Identity == "" {
		return nil, fmt.Errorf("%w: identity", ErrMissingClaim)
	}
	if claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: iat", ErrMissingClaim)
	}
	if claims.Subject != strconv.FormatInt(claims.AccountID, 10) {
		return nil, fmt.Errorf("%w: sub does not match aid", ErrInvalidToken)
	}

	return &Claims{
		AccountID: claims.AccountID,
		Identity:  claims.Identity,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
