// Package openai implements extraction.Extractor against an
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Kanaan7/NutritionTracker/internal"
	"github.com/Kanaan7/NutritionTracker/internal/extraction"
)

const quotaCode = "insufficient_quota"

type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	// Timeout bounds a single HTTP exchange. Callers may set a tighter
	// deadline on the context.
	Timeout time.Duration
}

type Client struct {
	client      *resty.Client
	model       string
	temperature float64
	logger      internal.Logger
}

func New(opts Options, logger internal.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if opts.APIKey != "" {
		c.SetAuthToken(opts.APIKey)
	}
	return &Client{client: c, model: opts.Model, temperature: opts.Temperature, logger: logger}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Extract sends one chat completion and parses its content. Failures are
// reported once; nothing is retried.
func (c *Client) Extract(ctx context.Context, text string, keys []string) (*extraction.Result, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: extraction.BuildPrompt(keys)},
			{Role: "user", Content: text},
		},
		Temperature: c.temperature,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&body).
		Post("/chat/completions")
	if err != nil {
		c.logger.Errorf("extraction: chat completion request failed: %v", err)
		return nil, &internal.ExtractionServiceError{Err: fmt.Errorf("chat completion request: %w", err)}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		var ae apiError
		_ = json.Unmarshal(resp.Body(), &ae)
		if resp.StatusCode() == http.StatusTooManyRequests || isQuota(ae) {
			c.logger.Warnf("extraction: quota exhausted (status %d): %s", resp.StatusCode(), ae.Error.Message)
			return nil, fmt.Errorf("%w: %s", internal.ErrQuotaExhausted, ae.Error.Message)
		}
		c.logger.Errorf("extraction: chat completion status %d: %s", resp.StatusCode(), resp.String())
		svcErr := &internal.ExtractionServiceError{Status: resp.StatusCode(), Body: resp.String()}
		if ae.Error.Message != "" {
			svcErr.Err = errors.New(ae.Error.Message)
		}
		return nil, svcErr
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &internal.ExtractionServiceError{Status: resp.StatusCode(), Body: resp.String(), Err: fmt.Errorf("decode chat completion: %w", err)}
	}
	if len(out.Choices) == 0 {
		return nil, &internal.ExtractionServiceError{Status: resp.StatusCode(), Body: resp.String(), Err: errors.New("chat completion has no choices")}
	}

	content := out.Choices[0].Message.Content
	c.logger.Debugf("extraction: model replied %q", content)
	return extraction.ParseResult(content, keys)
}

func isQuota(ae apiError) bool {
	if ae.Error.Type == quotaCode {
		return true
	}
	code, ok := ae.Error.Code.(string)
	return ok && code == quotaCode
}

var _ extraction.Extractor = (*Client)(nil)
