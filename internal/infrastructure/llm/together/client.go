// Package together talks to a Together-compatible chat completion API for
// both text generation and image understanding.
package together

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

	"golang.org/x/time/rate"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
	"github.com/vaishh-cloud/tattva-project/internal/infrastructure/resilience"
)

// MaxImageSize is the upload ceiling for images, tighter than the document
// limit because the whole payload travels base64-encoded in the request.
const MaxImageSize = 5 << 20

const (
	completionsPath   = "/v1/chat/completions"
	visionTemperature = 0.7
	visionMaxTokens   = 500
)

type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	VisionModel       string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

func (c Config) normalize() Config {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 5
	}
	if c.Burst <= 0 {
		c.Burst = 2
	}
	return c
}

type Client struct {
	baseURL     string
	apiKey      string
	model       string
	visionModel string
	httpClient  *http.Client
	limiter     *rate.Limiter
	executor    *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	cfg = cfg.normalize()
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		executor:    executor,
	}
}

func (c *Client) Complete(ctx context.Context, prompt string, opts ports.CompletionOptions) (string, error) {
	request := map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
	}
	return c.chat(ctx, "complete", request)
}

func (c *Client) SummarizeImage(ctx context.Context, data []byte, fileType domain.FileType, prompt string) (string, error) {
	if len(data) > MaxImageSize {
		return "", domain.WrapError(domain.ErrInvalidInput, "summarize image",
			fmt.Errorf("image size %d exceeds limit of %d bytes", len(data), MaxImageSize))
	}

	request := map[string]any{
		"model": c.visionModel,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]any{"url": imageDataURL(data, fileType)}},
				},
			},
		},
		"max_tokens":  visionMaxTokens,
		"temperature": visionTemperature,
	}
	return c.chat(ctx, "summarize image", request)
}

// imageDataURL inlines the image as a base64 data URL, the transport the
// vision endpoint expects.
func imageDataURL(data []byte, fileType domain.FileType) string {
	format := strings.ToLower(string(fileType))
	if format == "jpg" {
		format = "jpeg"
	}
	return fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) chat(ctx context.Context, operation string, payload any) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var response chatResponse
	err := c.executor.Execute(ctx, operation, func(ctx context.Context) error {
		return c.postJSON(ctx, payload, &response)
	}, classifyAPIError)
	if err != nil {
		return "", mapTransportError(operation, err)
	}

	if len(response.Choices) == 0 {
		return "", domain.WrapError(domain.ErrMalformedResponse, operation,
			fmt.Errorf("no choices in response"))
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func (c *Client) postJSON(ctx context.Context, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}
