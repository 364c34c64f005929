// Package debate produces counter-arguments to user debate messages
// through an external text-generation provider.
package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/debateai/service-api-go/internal/debate/gemini"
	"github.com/debateai/service-api-go/internal/textutil"
)

var (
	ErrInvalidInput     = errors.New("invalid input: please provide a valid argument, topic, stance, and level")
	ErrInvalidLevel     = errors.New("invalid debate level: please choose Beginner, Intermediate, Advanced, or Expert")
	ErrQuotaExceeded    = errors.New("API quota exceeded, please try again later")
	ErrProviderRejected = errors.New("could not process the request, please check the configuration")
	ErrGenerationFailed = errors.New("failed to generate response, please try again")
)

// Levels enumerates the accepted debate levels.
var Levels = map[string]struct{}{
	"Beginner":     {},
	"Intermediate": {},
	"Advanced":     {},
	"Expert":       {},
}

const promptTemplate = `You are an AI participating in a structured debate on the topic: '%s'.
Your position is: Oppose the user's stance ('%s').

The user said: "%s"

Now respond directly to their argument with a well-reasoned counterpoint.

Use the debate level '%s':
- Beginner: Use simple English. Reply with 1 short sentence using basic vocabulary.
- Intermediate: Use easy-to-understand English with 1-2 sentences.
- Advanced: Use clear English with 2 sentences and a focused counterpoint.
- Expert: Use sophisticated language, 2-3 sentences, include logical reasoning or real-world examples.

Always respond only in English. Your reply should directly challenge or build upon the user's argument.`

// TextGenerator is the provider surface the generator depends on.
// *gemini.Client satisfies it; tests substitute fakes.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Generator validates debate inputs, builds the opposing-debater
// prompt, and classifies provider failures.
type Generator struct {
	provider TextGenerator
	logger   *zap.SugaredLogger
}

func NewGenerator(provider TextGenerator, logger *zap.SugaredLogger) *Generator {
	return &Generator{provider: provider, logger: logger}
}

// Generate returns a normalized counter-argument for the user's
// message. Inputs are normalized first; validation failures never
// reach the provider.
func (g *Generator) Generate(ctx context.Context, message, topic, stance, level string) (string, error) {
	message = textutil.Normalize(message)
	topic = textutil.Normalize(topic)
	stance = textutil.Normalize(stance)
	level = textutil.Normalize(level)

	if message == "" || topic == "" || stance == "" || level == "" {
		return "", ErrInvalidInput
	}
	if _, ok := Levels[level]; !ok {
		return "", ErrInvalidLevel
	}

	prompt := fmt.Sprintf(promptTemplate, topic, stance, message, level)

	g.logger.Infow("generating counter-argument", "topic", topic, "stance", stance, "level", level)
	raw, err := g.provider.GenerateContent(ctx, prompt)
	if err != nil {
		return "", g.classify(err)
	}

	response := textutil.Normalize(raw)
	if response == "" {
		g.logger.Warnw("empty response from provider")
		return "", ErrGenerationFailed
	}
	return response, nil
}

// classify maps provider errors into the three-way taxonomy exposed to
// handlers. Raw provider detail stays in the logs only.
func (g *Generator) classify(err error) error {
	switch {
	case errors.Is(err, gemini.ErrRateLimited):
		g.logger.Warnw("provider quota exceeded", "err", err)
		return ErrQuotaExceeded
	case errors.Is(err, gemini.ErrInvalidArgument):
		g.logger.Errorw("provider rejected request", "err", err)
		return ErrProviderRejected
	default:
		g.logger.Errorw("generation failed", "err", err)
		return ErrGenerationFailed
	}
}

// ValidLevel reports whether level is one of the accepted values.
func ValidLevel(level string) bool {
	_, ok := Levels[strings.TrimSpace(level)]
	return ok
}
