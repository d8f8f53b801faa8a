package oracle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carspotter/internal/types"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash-001"
)

// GeminiClient talks to the Google Gemini REST API. Images travel as
// inlineData parts inside a single generateContent call.
type GeminiClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
	log             *zap.Logger
}

// NewGeminiClient creates a Gemini client, filling unset fields with
// defaults.
func NewGeminiClient(cfg Config) *GeminiClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &GeminiClient{
		apiKey:          cfg.APIKey,
		baseURL:         baseURL,
		model:           model,
		maxOutputTokens: maxTokens,
		httpClient:      &http.Client{Timeout: timeout},
		log:             log,
	}
}

// IdentifyFromImage sends the instruction plus the image as an inlineData
// part and returns the model's raw text.
func (c *GeminiClient) IdentifyFromImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	if len(image) == 0 {
		return "", &types.OracleError{Op: "identify", Err: fmt.Errorf("empty image payload")}
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	parts := []GeminiPart{
		{Text: instruction},
		{InlineData: &GeminiInlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
	}
	return c.generate(ctx, "identify", parts)
}

// GenerateText sends a text-only instruction and returns the model's raw
// text.
func (c *GeminiClient) GenerateText(ctx context.Context, instruction string) (string, error) {
	return c.generate(ctx, "generate", []GeminiPart{{Text: instruction}})
}

func (c *GeminiClient) generate(ctx context.Context, op string, parts []GeminiPart) (string, error) {
	// Impose the client timeout when the caller supplied no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	reqBody := GeminiRequest{
		Contents: []GeminiContent{{Parts: parts}},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     0.1, // low temperature for structured output
			MaxOutputTokens: c.maxOutputTokens,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &types.OracleError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	requestID := uuid.NewString()
	start := time.Now()

	const maxRetries = 3
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", &types.OracleError{Op: op, Err: ctx.Err()}
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return "", &types.OracleError{Op: op, Err: fmt.Errorf("create request: %w", err)}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("API status %d: %s", resp.StatusCode, truncate(string(body), 200))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", &types.OracleError{Op: op, Err: fmt.Errorf("API status %d: %s", resp.StatusCode, truncate(string(body), 200))}
		}

		var geminiResp GeminiResponse
		if err := json.Unmarshal(body, &geminiResp); err != nil {
			return "", &types.OracleError{Op: op, Err: fmt.Errorf("parse response: %w", err)}
		}
		if geminiResp.Error != nil {
			return "", &types.OracleError{Op: op, Err: fmt.Errorf("API error %d: %s", geminiResp.Error.Code, geminiResp.Error.Message)}
		}
		if len(geminiResp.Candidates) == 0 {
			return "", &types.OracleError{Op: op, Err: fmt.Errorf("no candidates returned")}
		}

		var result strings.Builder
		for _, part := range geminiResp.Candidates[0].Content.Parts {
			result.WriteString(part.Text)
		}
		text := strings.TrimSpace(result.String())
		if text == "" {
			return "", &types.OracleError{Op: op, Err: fmt.Errorf("empty completion")}
		}

		c.log.Debug("oracle call complete",
			zap.String("provider", "gemini"),
			zap.String("request_id", requestID),
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("total_tokens", geminiResp.UsageMetadata.TotalTokenCount),
			zap.Duration("elapsed", time.Since(start)))
		return text, nil
	}

	return "", &types.OracleError{Op: op, Err: fmt.Errorf("max retries exceeded: %w", lastErr)}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
