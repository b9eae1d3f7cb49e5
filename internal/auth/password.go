// ABOUTME: bcrypt password hashing and registration strength rules
// ABOUTME: Hashing failures are errors; verification mismatches are just false

package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the fixed bcrypt work factor.
const BcryptCost = 10

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

// minPasswordLength is the shortest password accepted at registration.
const minPasswordLength = 8

// dummyHash is compared against when the identity does not exist so that
// login timing does not reveal which identities are registered.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Password errors
var (
	ErrPasswordTooLong = fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
	ErrWeakPassword    = errors.New("password must be at least 8 characters and include upper case, lower case, a digit and a symbol")
	ErrPasswordHasNUL  = errors.New("password must not contain NUL characters")
)

// checkPasswordInput rejects input bcrypt cannot represent faithfully. bcrypt
// truncates at 72 bytes and pads its key with NUL-separated repeats, so such
// inputs can collide with a different password.
func checkPasswordInput(password string) error {
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	if strings.ContainsRune(password, 0) {
		return ErrPasswordHasNUL
	}
	return nil
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	HashPassword(plaintext string) (string, error)
	VerifyPassword(plaintext, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher using BcryptCost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: BcryptCost}
}

// HashPassword returns the bcrypt hash of plaintext.
func (h *BcryptHasher) HashPassword(plaintext string) (string, error) {
	if err := checkPasswordInput(plaintext); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches hash.
// A malformed hash, or plaintext that HashPassword would reject, verifies as false.
func (h *BcryptHasher) VerifyPassword(plaintext, hash string) bool {
	if checkPasswordInput(plaintext) != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// CheckPasswordStrength enforces the registration password rules.
func CheckPasswordStrength(password string) error {
	if err := checkPasswordInput(password); err != nil {
		return err
	}

	var upper, lower, digit, symbol bool
	count := 0
	for _, r := range password {
		count++
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			symbol = true
		}
	}

	if count < minPasswordLength || !upper || !lower || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}
