// ABOUTME: Gemini REST client for generating journal reflections
// ABOUTME: Single bounded attempt per call; every failure wraps ErrGenerationFailed

package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Defaults for the Gemini client.
const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.0-flash"
	DefaultTimeout  = 10 * time.Second
)

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 1 << 20

// ErrGenerationFailed wraps every generation failure.
var ErrGenerationFailed = errors.New("generation failed")

// ErrNotConfigured is returned when no API key is configured.
var ErrNotConfigured = fmt.Errorf("%w: api key not configured", ErrGenerationFailed)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds Gemini client settings.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// GeminiClient calls the Gemini generateContent endpoint.
type GeminiClient struct {
	apiKey   string
	model    string
	endpoint string
	timeout  time.Duration
	http     *http.Client
	logger   *slog.Logger
}

// Ensure GeminiClient implements Generator.
var _ Generator = (*GeminiClient)(nil)

// NewGeminiClient creates a client, filling unset fields with defaults.
func NewGeminiClient(cfg Config, logger *slog.Logger) *GeminiClient {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &GeminiClient{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		timeout:  cfg.Timeout,
		http:     &http.Client{},
		logger:   logger.With("component", "generation"),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// Generate sends prompt to Gemini and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", ErrGenerationFailed, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out after %s", ErrGenerationFailed, c.timeout)
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrGenerationFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(data, "error.message").String()
		return "", fmt.Errorf("%w: provider returned status %d: %s", ErrGenerationFailed, resp.StatusCode, msg)
	}

	return parseResponse(data)
}

// parseResponse extracts the generated text from a generateContent response body.
func parseResponse(data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%w: invalid response body", ErrGenerationFailed)
	}

	if msg := gjson.GetBytes(data, "error.message"); msg.Exists() {
		return "", fmt.Errorf("%w: provider error: %s", ErrGenerationFailed, msg.String())
	}
	if reason := gjson.GetBytes(data, "promptFeedback.blockReason"); reason.Exists() {
		return "", fmt.Errorf("%w: prompt blocked: %s", ErrGenerationFailed, reason.String())
	}

	text := gjson.GetBytes(data, "candidates.0.content.parts.0.text").String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return text, nil
}
