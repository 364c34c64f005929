package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateBody(text string) []byte {
	raw, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	return raw
}

func TestGenerateContentSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "models/test-model:generateContent")
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "debate prompt")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(candidateBody("a counterpoint"))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "secret", "test-model", 5*time.Second)
	out, err := c.GenerateContent(context.Background(), "debate prompt")
	require.NoError(t, err)
	assert.Equal(t, "a counterpoint", out)
}

func TestGenerateContentRetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write(candidateBody("recovered"))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "secret", "test-model", 5*time.Second)
	c.retryBase = time.Millisecond
	out, err := c.GenerateContent(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerateContentRateLimitExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "secret", "test-model", 5*time.Second)
	c.retryBase = time.Millisecond
	_, err := c.GenerateContent(context.Background(), "p")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls), "initial attempt plus three retries")
}

func TestGenerateContentInvalidArgument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "bad", "test-model", 5*time.Second)
	_, err := c.GenerateContent(context.Background(), "p")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGenerateContentEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "secret", "test-model", 5*time.Second)
	_, err := c.GenerateContent(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyCandidate)
}
