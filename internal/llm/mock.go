package llm

import (
	"context"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/models"
)

// MockScorer is a deterministic Scorer for tests and offline runs.
type MockScorer struct {
	// FixedScore and FixedReason are returned for every call.
	FixedScore  int
	FixedReason string
	// Err, when set, is returned instead of a score.
	Err error

	// Calls records the transcripts received, in order.
	Calls []string
}

// NewMockScorer returns a mock that always grades 3.
func NewMockScorer() *MockScorer {
	return &MockScorer{
		FixedScore:  3,
		FixedReason: "Specific experience with basic explanation. Shows reasonable understanding.",
	}
}

// Score implements Scorer deterministically.
func (m *MockScorer) Score(ctx context.Context, transcript string, rubric models.QuestionRubric) (*RubricScore, error) {
	m.Calls = append(m.Calls, transcript)
	if m.Err != nil {
		return nil, m.Err
	}
	return &RubricScore{Score: m.FixedScore, Reason: m.FixedReason}, nil
}
