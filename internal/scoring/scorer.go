// Package scoring combines the transcript, the LLM grading, and the integrity
// assessment into one score record per question.
package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/llm"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/models"
	"go.uber.org/zap"
)

// ErrUnknownQuestion is returned when the question id has no rubric. This is
// an input error: nothing is scored and no state is mutated.
var ErrUnknownQuestion = errors.New("unknown question id")

const (
	fallbackScore  = 1
	fallbackReason = "scoring service unavailable, fallback applied, requires manual review"

	transcriptFallbackReason = "transcription service unavailable, fallback applied, requires manual review"
)

// Input is everything the scorer needs for one question.
type Input struct {
	QuestionID    int
	Transcript    string
	STTConfidence float64
	// TranscriptionError is set when the transcription collaborator failed;
	// the scorer then applies the fallback score instead of calling the LLM.
	TranscriptionError string
	Integrity          models.IntegrityAssessment
}

// QuestionScorer produces score records using the LLM collaborator.
type QuestionScorer struct {
	scorer  llm.Scorer
	rubrics *models.RubricBank
	log     *zap.Logger
}

// NewQuestionScorer wires the scorer to its collaborators.
func NewQuestionScorer(scorer llm.Scorer, rubrics *models.RubricBank, log *zap.Logger) *QuestionScorer {
	return &QuestionScorer{scorer: scorer, rubrics: rubrics, log: log}
}

// Score grades one answered question. Collaborator failures never propagate;
// they produce a deterministic fallback record flagged for manual review.
func (s *QuestionScorer) Score(ctx context.Context, in Input) (*models.ScoreRecord, error) {
	rubric, ok := s.rubrics.ByID(in.QuestionID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownQuestion, in.QuestionID)
	}

	rawScore, reason := s.grade(ctx, in, rubric)

	// The collaborator output is clamped to the rubric's score range.
	if rawScore < 0 {
		rawScore = 0
	}
	if rawScore > 4 {
		rawScore = 4
	}

	score := rawScore
	if in.Integrity.CheatingFlag {
		// Integrity penalty: one point, floored at 1, applied at most once.
		score = rawScore - 1
		if score < 1 {
			score = 1
		}
		reason += fmt.Sprintf(
			" INTEGRITY CONCERN DETECTED (CV Analysis): Score lowered due to suspected non-verbal violation (Eye Movement Ratio: %.2f). Human review required.",
			in.Integrity.EyeMovementRatio,
		)
	}

	return &models.ScoreRecord{
		QuestionID:    in.QuestionID,
		Score:         score,
		Reason:        reason,
		Transcript:    in.Transcript,
		STTConfidence: in.STTConfidence,
		Integrity:     in.Integrity,
	}, nil
}

// grade obtains the raw rubric score, substituting the fallback on any
// collaborator failure.
func (s *QuestionScorer) grade(ctx context.Context, in Input, rubric models.QuestionRubric) (int, string) {
	if in.TranscriptionError != "" {
		s.log.Warn("Transcription unavailable, applying fallback score",
			zap.Int("question_id", in.QuestionID),
			zap.String("error", in.TranscriptionError),
		)
		return fallbackScore, transcriptFallbackReason
	}

	graded, err := s.scorer.Score(ctx, in.Transcript, rubric)
	if err != nil {
		s.log.Warn("Scoring service failed, applying fallback score",
			zap.Int("question_id", in.QuestionID),
			zap.Error(err),
		)
		return fallbackScore, fallbackReason
	}

	return graded.Score, graded.Reason
}
