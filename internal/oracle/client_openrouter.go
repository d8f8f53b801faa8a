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
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "google/gemini-2.0-flash-001"
)

// OpenRouterClient talks to the OpenRouter chat-completions API. Images
// travel as data URLs inside image_url content parts.
type OpenRouterClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
	log        *zap.Logger
}

// NewOpenRouterClient creates an OpenRouter client, filling unset fields
// with defaults.
func NewOpenRouterClient(cfg Config) *OpenRouterClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenRouterModel
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
	return &OpenRouterClient{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// IdentifyFromImage sends the instruction plus the image as a data URL and
// returns the model's raw text.
func (c *OpenRouterClient) IdentifyFromImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	if len(image) == 0 {
		return "", &types.OracleError{Op: "identify", Err: fmt.Errorf("empty image payload")}
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	content := []OpenRouterContent{
		{Type: "text", Text: instruction},
		{Type: "image_url", ImageURL: &OpenRouterImageURL{URL: dataURL}},
	}
	return c.complete(ctx, "identify", content)
}

// GenerateText sends a text-only instruction and returns the model's raw
// text.
func (c *OpenRouterClient) GenerateText(ctx context.Context, instruction string) (string, error) {
	return c.complete(ctx, "generate", []OpenRouterContent{{Type: "text", Text: instruction}})
}

func (c *OpenRouterClient) complete(ctx context.Context, op string, content []OpenRouterContent) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	reqBody := OpenRouterRequest{
		Model:       c.model,
		Messages:    []OpenRouterMessage{{Role: "user", Content: content}},
		MaxTokens:   c.maxTokens,
		Temperature: 0.1,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &types.OracleError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := c.baseURL + "/chat/completions"
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
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

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

		var orResp OpenRouterResponse
		if err := json.Unmarshal(body, &orResp); err != nil {
			return "", &types.OracleError{Op: op, Err: fmt.Errorf("parse response: %w", err)}
		}
		if orResp.Error != nil {
			return "", &types.OracleError{Op: op, Err: fmt.Errorf("API error %s: %s", orResp.Error.Code, orResp.Error.Message)}
		}
		if len(orResp.Choices) == 0 {
			return "", &types.OracleError{Op: op, Err: fmt.Errorf("no choices returned")}
		}

		text := strings.TrimSpace(orResp.Choices[0].Message.Content)
		if text == "" {
			return "", &types.OracleError{Op: op, Err: fmt.Errorf("empty completion")}
		}

		c.log.Debug("oracle call complete",
			zap.String("provider", "openrouter"),
			zap.String("request_id", requestID),
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("total_tokens", orResp.Usage.TotalTokens),
			zap.Duration("elapsed", time.Since(start)))
		return text, nil
	}

	return "", &types.OracleError{Op: op, Err: fmt.Errorf("max retries exceeded: %w", lastErr)}
}
