package debate

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/debateai/service-api-go/internal/httpx"
	"github.com/debateai/service-api-go/internal/speech"
)

// AudioSynthesizer is the artifact-cache surface the handler needs.
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
	Dir() string
}

// Handler exposes the debate endpoints: counter-argument generation
// and audio artifact retrieval.
type Handler struct {
	generator  *Generator
	audio      AudioSynthesizer
	backendURL string
	logger     *zap.SugaredLogger
}

func NewHandler(generator *Generator, audio AudioSynthesizer, backendURL string, logger *zap.SugaredLogger) *Handler {
	return &Handler{generator: generator, audio: audio, backendURL: backendURL, logger: logger}
}

// ResponseRequest is the request body for the debate response endpoint.
type ResponseRequest struct {
	Message string `json:"message"`
	Topic   string `json:"topic"`
	Stance  string `json:"stance"`
	Level   string `json:"level"`
}

// ResponseData is the payload returned on success. AudioURL is empty
// when synthesis failed and the response degraded to text only.
type ResponseData struct {
	Message  string `json:"message"`
	AudioURL string `json:"audio_url,omitempty"`
}

// Respond generates a counter-argument and, best effort, a speech
// artifact for it.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	var req ResponseRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Message == "" || req.Topic == "" || req.Stance == "" || req.Level == "" {
		httpx.WriteError(w, http.StatusBadRequest, "message, topic, stance, and level are required")
		return
	}

	message, err := h.generator.Generate(r.Context(), req.Message, req.Topic, req.Stance, req.Level)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidLevel):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrQuotaExceeded):
			httpx.WriteError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, ErrProviderRejected):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			httpx.WriteError(w, http.StatusInternalServerError, ErrGenerationFailed.Error())
		}
		return
	}

	data := ResponseData{Message: message}
	audioPath, err := h.audio.Synthesize(r.Context(), message)
	if err != nil {
		// degrade to text-only rather than failing the debate turn
		h.logger.Warnw("speech synthesis failed, returning text only", "err", err)
	} else if audioPath != "" {
		data.AudioURL = h.backendURL + "/api/debate/audio/" + filepath.Base(audioPath)
	}

	httpx.WriteOK(w, http.StatusOK, "", data)
}

// ServeAudio streams a previously synthesized artifact. The filename
// is validated against the fixed artifact pattern before any
// filesystem access.
func (h *Handler) ServeAudio(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if !speech.ValidFileName(name) {
		h.logger.Debugw("rejected audio filename", "filename", name)
		httpx.WriteError(w, http.StatusBadRequest, "invalid audio filename")
		return
	}

	path := filepath.Join(h.audio.Dir(), name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			httpx.WriteError(w, http.StatusNotFound, "audio file not found")
			return
		}
		h.logger.Errorw("failed to open audio file", "path", path, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to serve audio file")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.logger.Errorw("failed to stat audio file", "path", path, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to serve audio file")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeContent(w, r, name, info.ModTime(), f)
}
