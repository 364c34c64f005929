package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings for the debate API. Everything is
// sourced from the environment; secrets are never embedded in code.
type Config struct {
	Addr       string
	BackendURL string

	DatabaseURL string

	GeminiAPIKey string
	GeminiModel  string

	TTSBaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	AudioDir string
	AudioTTL time.Duration

	CORSOrigins []string

	RateLimitRPS   float64
	RateLimitBurst int
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is not configured")
	ErrMissingGeminiKey   = errors.New("GEMINI_API_KEY is not configured")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is not configured")
)

// FromEnv builds a Config from environment variables and applies defaults.
func FromEnv() Config {
	port := getenv("PORT", "5000")
	return Config{
		Addr:           "0.0.0.0:" + port,
		BackendURL:     getenv("BACKEND_URL", "http://localhost:"+port),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		TTSBaseURL:     getenv("TTS_BASE_URL", "https://translate.google.com"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTTTL:         getDuration("JWT_TTL", 24*time.Hour),
		AudioDir:       getenv("AUDIO_DIR", filepath.Join(os.TempDir(), "debate-audio")),
		AudioTTL:       getDuration("AUDIO_TTL", time.Hour),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "http://localhost:8080")),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
	}
}

// Validate reports the first missing required setting. The process is
// expected to abort at startup when this fails.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.GeminiAPIKey == "" {
		return ErrMissingGeminiKey
	}
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
