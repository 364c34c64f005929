// Package gemini is a minimal REST client for the Gemini text
// generation API. Provider failures are classified into rate-limit,
// invalid-argument, and generic errors so callers never surface a raw
// provider response to users.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"

	generatePathFormat = "/v1beta/models/%s:generateContent"

	defaultTemperature     = 0.7
	defaultMaxOutputTokens = 150

	// rate-limited requests are retried with exponential backoff
	maxRetries        = 3
	retryBaseInterval = time.Second
)

var (
	ErrRateLimited     = errors.New("gemini: rate limit exceeded")
	ErrInvalidArgument = errors.New("gemini: invalid argument or credential")
	ErrEmptyCandidate  = errors.New("gemini: empty response")
)

// Client calls the generateContent endpoint for a fixed model.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	retryBase  time.Duration
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		retryBase:  retryBaseInterval,
	}
}

// NewClientWithBaseURL overrides the API host; used by tests.
func NewClientWithBaseURL(baseURL, apiKey, model string, timeout time.Duration) *Client {
	c := NewClient(apiKey, model, timeout)
	c.baseURL = baseURL
	return c
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateContent sends the prompt and returns the first candidate's
// text. Rate-limited calls are retried up to maxRetries with
// exponential backoff before ErrRateLimited is returned.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	var out string
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(c.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		text, err := c.generateOnce(ctx, prompt)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = text
		return nil
	})
	return out, err
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     defaultTemperature,
			MaxOutputTokens: defaultMaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + fmt.Sprintf(generatePathFormat, c.model) + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.classifyStatus(resp)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCandidate
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) classifyStatus(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, resp.Status)
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s: %s", ErrInvalidArgument, resp.Status, string(detail))
	default:
		return fmt.Errorf("gemini: unexpected status %s: %s", resp.Status, string(detail))
	}
}
