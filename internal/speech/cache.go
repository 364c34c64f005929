// Package speech memoizes synthesized audio artifacts on disk so that
// identical debate responses are synthesized at most once per retention
// window.
package speech

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/debateai/service-api-go/internal/textutil"
	"github.com/debateai/service-api-go/pkg/utilities"
)

const (
	filePermissions = 0o600
	dirPermissions  = 0o750

	// bounded retries for filesystem deletes that hit transient errors
	deleteAttempts = 5
	deleteDelay    = 2 * time.Second
)

// fileNamePattern is the only filename shape ever produced, and the
// only shape the retrieval handler will touch on disk.
var fileNamePattern = regexp.MustCompile(`^ai_response_\d+\.mp3$`)

// ValidFileName reports whether name is a well-formed artifact name.
// Anything else (including path traversal attempts) is rejected before
// the filesystem is consulted.
func ValidFileName(name string) bool {
	return fileNamePattern.MatchString(name)
}

// Synthesizer is the external speech provider surface.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type entry struct {
	path      string
	createdAt time.Time
}

// ArtifactCache maps normalized text to a synthesized audio file. The
// mapping is memoized: repeated identical text reuses the stored file
// and never re-invokes the provider while the file survives the sweep.
type ArtifactCache struct {
	dir         string
	ttl         time.Duration
	synth       Synthesizer
	logger      *zap.SugaredLogger
	deleteDelay time.Duration

	mu      sync.Mutex
	entries map[string]entry
}

// NewArtifactCache creates the backing directory and an empty mapping.
func NewArtifactCache(dir string, ttl time.Duration, synth Synthesizer, logger *zap.SugaredLogger) (*ArtifactCache, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("create audio directory: %w", err)
	}
	return &ArtifactCache{
		dir:         dir,
		ttl:         ttl,
		synth:       synth,
		logger:      logger,
		deleteDelay: deleteDelay,
		entries:     make(map[string]entry),
	}, nil
}

// Dir returns the backing directory path.
func (c *ArtifactCache) Dir() string { return c.dir }

// Synthesize returns the path of an audio file speaking text. Empty
// text (after normalization) yields ("", nil). A cache hit whose
// backing file was swept out-of-band is treated as a miss and
// re-synthesized.
func (c *ArtifactCache) Synthesize(ctx context.Context, text string) (string, error) {
	text = textutil.Normalize(text)
	if text == "" {
		return "", nil
	}

	sum := md5.Sum([]byte(text))
	key := hex.EncodeToString(sum[:])

	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		if _, err := os.Stat(e.path); err == nil {
			c.logger.Debugw("audio cache hit", "key", key, "path", e.path)
			return e.path, nil
		}
		// the sweep (or an operator) removed the file under us
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.logger.Debugw("audio cache entry lost its file, re-synthesizing", "key", key)
	}

	c.Cleanup()

	audio, err := c.synth.Synthesize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("synthesize audio: %w", err)
	}

	name := fmt.Sprintf("ai_response_%s.mp3", strconv.FormatInt(utilities.NewSnowflakeInt64(), 10))
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, audio, filePermissions); err != nil {
		c.removeWithRetry(path)
		return "", fmt.Errorf("write audio file: %w", err)
	}

	c.mu.Lock()
	c.entries[key] = entry{path: path, createdAt: time.Now()}
	c.mu.Unlock()

	c.logger.Infow("audio file generated", "path", path, "bytes", len(audio))
	return path, nil
}

// Cleanup removes every audio file in the directory older than the TTL,
// keyed on file modification time only, and prunes mapping entries
// whose files no longer exist. Safe to call concurrently with
// Synthesize; a concurrently swept hit is re-synthesized on the next
// lookup.
func (c *ArtifactCache) Cleanup() {
	cutoff := time.Now().Add(-c.ttl)

	paths, err := filepath.Glob(filepath.Join(c.dir, "*.mp3"))
	if err != nil {
		c.logger.Errorw("audio cleanup glob failed", "err", err)
		return
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if c.removeWithRetry(p) {
				c.logger.Infow("cleaned up old audio file", "path", p)
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if _, err := os.Stat(e.path); err != nil {
			delete(c.entries, key)
		}
	}
}

// removeWithRetry deletes a file, retrying transient filesystem errors
// a bounded number of times with a fixed delay. Returns true when the
// file was removed.
func (c *ArtifactCache) removeWithRetry(path string) bool {
	removed := false
	backoff := retry.WithMaxRetries(deleteAttempts-1, retry.NewConstant(c.deleteDelay))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		err := os.Remove(path)
		if err == nil {
			removed = true
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		c.logger.Errorw("failed to delete audio file", "path", path, "err", err)
	}
	return removed
}
