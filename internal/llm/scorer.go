// Package llm wraps the large-language-model collaborator that grades a
// transcript against a question rubric.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/config"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/models"
)

// ErrService marks failures of the scoring service (timeouts, malformed
// responses). Callers apply the fallback score rather than propagate it.
var ErrService = errors.New("scoring service error")

// RubricScore is the raw grading output before any integrity adjustment.
type RubricScore struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Scorer grades one transcript against one question rubric.
type Scorer interface {
	Score(ctx context.Context, transcript string, rubric models.QuestionRubric) (*RubricScore, error)
}

// New creates a Scorer from configuration.
func New(ctx context.Context, cfg config.LLMConfig) (Scorer, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiScorer(ctx, cfg.APIKey, cfg.Model)
	case "mock":
		return NewMockScorer(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}

// Unavailable returns a Scorer that fails every call with the given cause.
// It lets the service start when the provider cannot be initialized; each
// scoring attempt then takes the fallback path instead.
func Unavailable(cause error) Scorer {
	return unavailableScorer{cause: cause}
}

type unavailableScorer struct {
	cause error
}

func (u unavailableScorer) Score(ctx context.Context, transcript string, rubric models.QuestionRubric) (*RubricScore, error) {
	return nil, fmt.Errorf("%w: provider not initialized: %v", ErrService, u.cause)
}
