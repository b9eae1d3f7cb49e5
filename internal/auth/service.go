// ABOUTME: Account registration and login
// ABOUTME: Hashes passwords, persists accounts, and issues session tokens

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/2389/quill/internal/store"
)

// Service errors
var (
	ErrMissingCredentials = errors.New("identity and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenIssuer issues session tokens for accounts.
type TokenIssuer interface {
	Issue(accountID int64, identity string) (string, error)
}

// Session is the result of a successful register or login.
type Session struct {
	Token   string
	Account *store.Account
}

// Service registers accounts and authenticates logins.
type Service struct {
	accounts store.AccountStore
	hasher   PasswordHasher
	issuer   TokenIssuer
	logger   *slog.Logger
}

// NewService creates an account service.
func NewService(accounts store.AccountStore, hasher PasswordHasher, issuer TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger.With("component", "accounts"),
	}
}

// Register creates an account and returns a session for it.
// Returns store.ErrDuplicateIdentity if the identity is taken.
func (s *Service) Register(ctx context.Context, identity, password string) (*Session, error) {
	if strings.TrimSpace(identity) == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if err := CheckPasswordStrength(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) || errors.Is(err, ErrPasswordHasNUL) {
			return nil, err
		}
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	account := &store.Account{
		Identity:     identity,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrDuplicateIdentity) {
			return nil, err
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	token, err := s.issuer.Issue(account.ID, account.Identity)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("account registered", "account_id", account.ID)
	return &Session{Token: token, Account: account}, nil
}

// Login verifies credentials and returns a new session.
// Unknown identities and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, identity, password string) (*Session, error) {
	if strings.TrimSpace(identity) == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if checkPasswordInput(password) != nil {
		// No stored hash can match; keep timing identical to a wrong password
		_ = s.hasher.VerifyPassword("", dummyHash)
		return nil, ErrInvalidCredentials
	}

	account, err := s.accounts.GetAccountByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Keep timing identical to a wrong password
			_ = s.hasher.VerifyPassword(password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if !s.hasher.VerifyPassword(password, account.PasswordHash) {
		s.logger.Debug("login rejected", "account_id", account.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(account.ID, account.Identity)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("login succeeded", "account_id", account.ID)
	return &Session{Token: token, Account: account}, nil
}
