// ABOUTME: Journal entry write pipeline and owner-scoped listing
// ABOUTME: Generation is best-effort; every validated entry is persisted with text or fallback

package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/2389/quill/internal/generation"
	"github.com/2389/quill/internal/metrics"
	"github.com/2389/quill/internal/store"
)

// FallbackText is stored as the augmentation when generation fails.
const FallbackText = "AI response temporarily unavailable. Please try again later."

// Pipeline errors
var (
	ErrEmptyText    = errors.New("entry text is required")
	ErrAuthRequired = errors.New("authenticated account required")
)

// Recorder receives pipeline observations. *metrics.Metrics implements it.
type Recorder interface {
	ObserveGeneration(outcome string, duration time.Duration)
	EntryCreated()
}

// Result is a persisted entry plus whether its augmentation is the fallback.
type Result struct {
	Entry    *store.Entry
	Fallback bool
}

// Service creates and lists journal entries.
type Service struct {
	entries   store.EntryStore
	generator generation.Generator
	recorder  Recorder
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a journal service. recorder may be nil. Each generation
// attempt is bounded by timeout, or generation.DefaultTimeout if it is not positive.
func NewService(entries store.EntryStore, generator generation.Generator, recorder Recorder, timeout time.Duration, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = (*metrics.Metrics)(nil)
	}
	if timeout <= 0 {
		timeout = generation.DefaultTimeout
	}
	return &Service{
		entries:   entries,
		generator: generator,
		recorder:  recorder,
		timeout:   timeout,
		logger:    logger.With("component", "journal"),
		now:       time.Now,
	}
}

// Create augments text with a generated reflection and persists the entry.
// Generation failures are absorbed into FallbackText; only storage failures
// are returned.
func (s *Service) Create(ctx context.Context, accountID int64, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if accountID <= 0 {
		return nil, ErrAuthRequired
	}

	augmentation, fallback := s.augment(ctx, accountID, text)

	entry := &store.Entry{
		AccountID:    accountID,
		Text:         text,
		Augmentation: augmentation,
		CreatedAt:    s.now().UTC(),
	}

	// Persist even if the client has disconnected.
	if err := s.entries.CreateEntry(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("failed to persist entry", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("persisting entry: %w", err)
	}

	s.recorder.EntryCreated()
	s.logger.Info("entry created", "entry_id", entry.ID, "account_id", accountID, "fallback", fallback)
	return &Result{Entry: entry, Fallback: fallback}, nil
}

// augment returns the generated reflection, or FallbackText and true on failure.
func (s *Service) augment(ctx context.Context, accountID int64, text string) (string, bool) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	generated, err := s.generator.Generate(genCtx, generation.BuildPrompt(text))
	elapsed := time.Since(start)
	if err == nil && strings.TrimSpace(generated) == "" {
		err = fmt.Errorf("%w: empty response", generation.ErrGenerationFailed)
	}

	if err != nil {
		s.recorder.ObserveGeneration(metrics.OutcomeFallback, elapsed)
		s.logger.Warn("generation failed, using fallback",
			"account_id", accountID,
			"duration", elapsed,
			"error", err,
		)
		return FallbackText, true
	}

	s.recorder.ObserveGeneration(metrics.OutcomeGenerated, elapsed)
	return generated, false
}

// List returns the account's entries, newest first. The slice is never nil.
func (s *Service) List(ctx context.Context, accountID int64) ([]*store.Entry, error) {
	if accountID <= 0 {
		return nil, ErrAuthRequired
	}

	entries, err := s.entries.ListEntries(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	if entries == nil {
		entries = []*store.Entry{}
	}
	return entries, nil
}
