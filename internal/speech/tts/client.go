// Package tts is a client for the hosted speech synthesis endpoint
// used for debate responses. The provider returns MP3 audio for short
// English text.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	synthesizePath = "/translate_tts"

	// the provider rejects long queries; callers' text is truncated here
	maxQueryLen = 200

	defaultLanguage = "en"

	maxRetries        = 3
	retryBaseInterval = time.Second
)

var (
	ErrEmptyText   = errors.New("tts: text cannot be empty")
	ErrRateLimited = errors.New("tts: rate limit exceeded")
	ErrEmptyAudio  = errors.New("tts: received empty audio data")
)

// Client calls the synthesis endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	language   string
	retryBase  time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		language:   defaultLanguage,
		retryBase:  retryBaseInterval,
	}
}

// Synthesize returns MP3 audio for the given text. Rate-limited calls
// are retried with exponential backoff before ErrRateLimited surfaces.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if len(text) > maxQueryLen {
		text = text[:maxQueryLen]
	}

	var audio []byte
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(c.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		data, err := c.synthesizeOnce(ctx, text)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				return retry.RetryableError(err)
			}
			return err
		}
		audio = data
		return nil
	})
	return audio, err
}

func (c *Client) synthesizeOnce(ctx context.Context, text string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", c.language)
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+synthesizePath+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call tts service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tts: unexpected status %s: %s", resp.Status, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio data: %w", err)
	}
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}
	return audio, nil
}
