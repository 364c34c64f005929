package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/debateai/service-api-go/internal/httpx"
)

func newTestHandler() *Handler {
	svc := NewService(newFakeStore())
	return NewHandler(svc, []byte("test-secret"), time.Hour, zap.NewNop().Sugar())
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) (*httptest.ResponseRecorder, httpx.Envelope) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)

	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestSignupLoginFlow(t *testing.T) {
	h := newTestHandler()

	rec, env := postJSON(t, h.Signup, SignupRequest{
		Name: "A", Email: "a@x.com", Password: "Abcd1234!", ConfirmPassword: "Abcd1234!",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Timestamp)

	// duplicate signup
	rec, env = postJSON(t, h.Signup, SignupRequest{
		Name: "A", Email: "a@x.com", Password: "Abcd1234!", ConfirmPassword: "Abcd1234!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "already registered")

	// correct login returns a token
	rec, env = postJSON(t, h.Login, LoginRequest{Email: "a@x.com", Password: "Abcd1234!"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])

	// wrong password
	rec, env = postJSON(t, h.Login, LoginRequest{Email: "a@x.com", Password: "Nope1234!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}

func TestSignupRejectsMalformedJSON(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileNotFound(t *testing.T) {
	h := newTestHandler()
	rec, env := postJSON(t, h.Profile, ProfileRequest{Email: "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestCompleteDebateRequiresEmail(t *testing.T) {
	h := newTestHandler()
	rec, _ := postJSON(t, h.CompleteDebate, ProfileRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
