package models

// Decision strings are part of the wire contract; downstream consumers match on
// them literally.
const (
	DecisionPassed     = "PASSED (Auto)"
	DecisionNeedReview = "Need Human Review"
)

// IntegrityAssessment summarizes the non-verbal analysis of one answer video.
// It is produced once per video and embedded into the ScoreRecord unchanged.
type IntegrityAssessment struct {
	EyeMovementRatio float64 `json:"eye_movement_ratio"`
	CheatingFlag     bool    `json:"cheating_flag"`
	Violations       int     `json:"violations"`
	Error            string  `json:"error,omitempty"`
}

// ScoreRecord is the scored result for a single question. The transcript and
// STT confidence ride along for audit purposes; they do not affect the score.
type ScoreRecord struct {
	QuestionID    int                 `json:"id"`
	Score         int                 `json:"score"`
	Reason        string              `json:"reason"`
	Transcript    string              `json:"transcript"`
	STTConfidence float64             `json:"stt_confidence"`
	Integrity     IntegrityAssessment `json:"cv_metrics"`
}

// AssessorProfile identifies the automated assessor on the final payload.
type AssessorProfile struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
}

// ScoresOverview carries the three headline totals.
type ScoresOverview struct {
	Project   float64 `json:"project"`
	Interview int     `json:"interview"`
	Total     float64 `json:"total"`
}

// InterviewChecklist holds the per-question scores, ordered by question id.
type InterviewChecklist struct {
	MinScore int           `json:"minScore"`
	MaxScore int           `json:"maxScore"`
	Scores   []ScoreRecord `json:"scores"`
}

// ReviewChecklist mirrors the review payload consumed by the assessor UI.
type ReviewChecklist struct {
	Project    []string           `json:"project"`
	Interviews InterviewChecklist `json:"interviews"`
}

// FinalAssessment is the compiled outcome of a complete session. It is derived
// on demand from the session's score records and never partially persisted.
type FinalAssessment struct {
	AssessorProfile       AssessorProfile `json:"assessorProfile"`
	Decision              string          `json:"decision"`
	ReviewedAt            string          `json:"reviewedAt"`
	ScoresOverview        ScoresOverview  `json:"scoresOverview"`
	ReviewChecklistResult ReviewChecklist `json:"reviewChecklistResult"`
	// The key spelling is kept for compatibility with existing consumers.
	Notes string `json:"Overall notes"`
}
