package user

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/debateai/service-api-go/internal/auth"
	"github.com/debateai/service-api-go/internal/httpx"
)

// Handler exposes HTTP endpoints for account operations.
type Handler struct {
	svc       *Service
	jwtSecret []byte
	jwtTTL    time.Duration
	logger    *zap.SugaredLogger
}

func NewHandler(svc *Service, jwtSecret []byte, jwtTTL time.Duration, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, jwtSecret: jwtSecret, jwtTTL: jwtTTL, logger: logger}
}

// SignupRequest is the request body for the signup endpoint.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		h.logger.Debugw("invalid signup payload", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	summary, err := h.svc.Signup(r.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields),
			errors.Is(err, ErrPasswordMismatch),
			errors.Is(err, ErrWeakPassword),
			errors.Is(err, ErrInvalidEmail),
			errors.Is(err, ErrDuplicateEmail):
			h.logger.Debugw("signup rejected", "err", err)
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Errorw("signup failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "failed to register user")
		}
		return
	}
	httpx.WriteOK(w, http.StatusCreated, "User registered successfully", map[string]any{"user": summary})
}

// LoginRequest is the request body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	summary, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			h.logger.Debugw("login rejected", "email", req.Email)
			httpx.WriteError(w, http.StatusUnauthorized, ErrBadCredentials.Error())
			return
		}
		h.logger.Errorw("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	token, err := auth.GenerateToken(summary.Email, h.jwtSecret, h.jwtTTL)
	if err != nil {
		h.logger.Errorw("token issuance failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to login")
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Login successful", map[string]any{
		"user":  summary,
		"token": token,
	})
}

// ProfileRequest is the request body for the profile endpoint.
type ProfileRequest struct {
	Email string `json:"email"`
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}
	summary, err := h.svc.Profile(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		h.logger.Errorw("profile fetch failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	httpx.WriteOK(w, http.StatusOK, "", map[string]any{"user": summary})
}

// CompleteDebate increments the caller's debates_attended counter.
func (h *Handler) CompleteDebate(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.svc.CompleteDebate(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}
		h.logger.Errorw("debate count update failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update debate count")
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Debate count updated", nil)
}
