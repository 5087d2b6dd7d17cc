// Package session owns the per-candidate mapping of question to score record:
// idempotent upsert, completeness gating, and final compilation.
package session

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/models"
)

// Session states as reported by Status.
const (
	StateEmpty    = "empty"
	StatePartial  = "partial"
	StateComplete = "complete"
)

// IncompleteError reports a compile attempt on a session that has not answered
// every question.
type IncompleteError struct {
	Answered int
	Required int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("incomplete assessment: %d of %d questions answered", e.Answered, e.Required)
}

// Settings carries the compilation inputs shared by every session.
type Settings struct {
	Required      int     // number of questions in a complete session
	ProjectScore  float64 // fixed external input, weighted 50/50 with the interview
	PassThreshold int     // minimum interview total for an automatic pass
}

// Session accumulates score records for one candidate attempt. All methods are
// safe for concurrent use by requests belonging to the same session.
type Session struct {
	mu       sync.Mutex
	records  map[int]models.ScoreRecord
	settings Settings
	lastUsed time.Time
}

func newSession(settings Settings) *Session {
	return &Session{
		records:  make(map[int]models.ScoreRecord),
		settings: settings,
		lastUsed: time.Now(),
	}
}

// Upsert inserts the record or replaces any existing record for the same
// question. The latest submission for a question always wins.
func (s *Session) Upsert(record models.ScoreRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.QuestionID] = record
	s.lastUsed = time.Now()
}

// Reset clears every record, returning the session to the empty state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[int]models.ScoreRecord)
	s.lastUsed = time.Now()
}

// Status reports the session state and which questions are answered.
type Status struct {
	State    string `json:"state"`
	Answered []int  `json:"answered"`
	Required int    `json:"required"`
}

// Status returns the current state snapshot.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	answered := make([]int, 0, len(s.records))
	for id := range s.records {
		answered = append(answered, id)
	}
	sort.Ints(answered)

	state := StatePartial
	switch {
	case len(answered) == 0:
		state = StateEmpty
	case len(answered) >= s.settings.Required:
		state = StateComplete
	}

	return Status{State: state, Answered: answered, Required: s.settings.Required}
}

// Compile produces the final assessment. It fails with an IncompleteError
// unless every question has a record; no partial compile is ever returned.
func (s *Session) Compile() (*models.FinalAssessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()

	if len(s.records) < s.settings.Required {
		return nil, &IncompleteError{Answered: len(s.records), Required: s.settings.Required}
	}

	// Per-question scores are ordered by question id regardless of
	// submission order.
	scores := make([]models.ScoreRecord, 0, len(s.records))
	for _, record := range s.records {
		scores = append(scores, record)
	}
	sort.Slice(scores, func(i, j int) bool {
		return scores[i].QuestionID < scores[j].QuestionID
	})

	interviewTotal := 0
	totalViolations := 0
	anyCheating := false
	for _, record := range scores {
		interviewTotal += record.Score
		totalViolations += record.Integrity.Violations
		if record.Integrity.CheatingFlag {
			anyCheating = true
		}
	}

	maxPossible := 4 * s.settings.Required

	var decision, notes string
	if anyCheating || interviewTotal < s.settings.PassThreshold {
		decision = models.DecisionNeedReview
		notes = fmt.Sprintf(
			"Potential Integrity Issue (Violations: %d) and/or low score (%d/%d). Review non-verbal data.",
			totalViolations, interviewTotal, maxPossible,
		)
	} else {
		decision = models.DecisionPassed
		notes = "Assessment passed all checks. Transcript analysis confirmed strong performance. No integrity concerns detected."
	}

	interviewPercent := float64(interviewTotal) / float64(maxPossible) * 100
	totalScore := round2(s.settings.ProjectScore*0.5 + interviewPercent*0.5)

	return &models.FinalAssessment{
		AssessorProfile: models.AssessorProfile{
			ID:       1,
			Name:     "DCML AI Assessor",
			PhotoURL: "NA",
		},
		Decision:   decision,
		ReviewedAt: time.Now().Format("2006-01-02 15:04:05"),
		ScoresOverview: models.ScoresOverview{
			Project:   s.settings.ProjectScore,
			Interview: interviewTotal,
			Total:     totalScore,
		},
		ReviewChecklistResult: models.ReviewChecklist{
			Project: []string{},
			Interviews: models.InterviewChecklist{
				MinScore: 0,
				MaxScore: 4,
				Scores:   scores,
			},
		},
		Notes: notes,
	}, nil
}

func (s *Session) lastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
