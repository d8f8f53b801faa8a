// Package oracle reaches the external generative AI service. The rest of
// the system sees only the two-method Client interface: everything
// vendor-specific (endpoints, payload shapes, retry behavior) stays behind
// it, and prompt text never embeds vendor formatting assumptions.
package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client is the capability contract for the generative backend: given an
// image and instructions return text, or given instructions return text.
// Responses are raw model output; sanitization and validation happen
// downstream.
type Client interface {
	IdentifyFromImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error)
	GenerateText(ctx context.Context, instruction string) (string, error)
}

// Provider selects a backend implementation.
type Provider string

const (
	ProviderGemini     Provider = "gemini"
	ProviderOpenRouter Provider = "openrouter"
)

// Config holds the settings shared by all client implementations.
type Config struct {
	Provider        Provider
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
	// Logger receives per-call tracing with request correlation IDs.
	// Nil means no tracing.
	Logger *zap.Logger
}

// New builds a client for the configured provider.
func New(cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("oracle API key not configured")
	}
	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(cfg), nil
	case ProviderOpenRouter:
		return NewOpenRouterClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}
