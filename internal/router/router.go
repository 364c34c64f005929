package router

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/debateai/service-api-go/internal/config"
	"github.com/debateai/service-api-go/internal/debate"
	"github.com/debateai/service-api-go/internal/httpx"
	"github.com/debateai/service-api-go/internal/user"
	"github.com/debateai/service-api-go/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs each request at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"request_id", w.Header().Get("X-Request-Id"),
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware tags each response with a unique X-Request-Id.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = utilities.NewKSUID()
			}
			w.Header().Set("X-Request-Id", id)
			next.ServeHTTP(w, r)
		})
	}
}

// RecoverMiddleware converts panics into a generic 500 envelope so no
// stack trace ever reaches a client.
func RecoverMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Errorw("panic in handler", "path", r.URL.Path, "panic", rec)
					httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts all HTTP handlers on a standard library
// ServeMux and wraps the mux with the middleware chain.
func RegisterRoutes(
	logger *zap.SugaredLogger,
	cfg config.Config,
	db *sqlx.DB,
	userHandler *user.Handler,
	debateHandler *debate.Handler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logger.Warnw("health check db ping failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		httpx.WriteOK(w, http.StatusOK, "ok", map[string]any{"database": "connected"})
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteOK(w, http.StatusOK, "Welcome to DebateAI API", nil)
	})

	mux.HandleFunc("POST /api/signup", userHandler.Signup)
	mux.HandleFunc("POST /api/login", userHandler.Login)
	mux.HandleFunc("POST /api/profile", userHandler.Profile)
	mux.HandleFunc("POST /api/debate/complete", userHandler.CompleteDebate)

	mux.HandleFunc("POST /api/debate/response", debateHandler.Respond)
	mux.HandleFunc("GET /api/debate/audio/{filename}", debateHandler.ServeAudio)

	corsPolicy := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	limiter := NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	var handler http.Handler = mux
	handler = RateLimitMiddleware(limiter)(handler)
	handler = corsPolicy.Handler(handler)
	handler = SecurityHeadersMiddleware()(handler)
	handler = RequestIDMiddleware()(handler)
	handler = RecoverMiddleware(logger)(handler)
	handler = LoggingMiddleware(logger)(handler)
	return handler
}
