package repository

import (
	"time"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/database"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/models"
	"github.com/lib/pq"
)

// ArchiveFinalAssessment persists a compiled assessment for audit. It is a
// no-op when the archive database is disabled.
func ArchiveFinalAssessment(sessionID string, fa *models.FinalAssessment) error {
	if database.DB == nil {
		return nil
	}

	scores := make(pq.Int64Array, 0, len(fa.ReviewChecklistResult.Interviews.Scores))
	flagged := false
	for _, record := range fa.ReviewChecklistResult.Interviews.Scores {
		scores = append(scores, int64(record.Score))
		if record.Integrity.CheatingFlag {
			flagged = true
		}
	}

	reviewedAt, err := time.Parse("2006-01-02 15:04:05", fa.ReviewedAt)
	if err != nil {
		reviewedAt = time.Now()
	}

	row := models.AssessmentArchive{
		SessionID:       sessionID,
		Decision:        fa.Decision,
		ProjectScore:    fa.ScoresOverview.Project,
		InterviewScore:  fa.ScoresOverview.Interview,
		TotalScore:      fa.ScoresOverview.Total,
		Notes:           fa.Notes,
		Scores:          scores,
		CheatingFlagged: flagged,
		ReviewedAt:      reviewedAt,
	}

	return database.DB.Create(&row).Error
}

// GetArchivedAssessments returns every archived compilation for a session,
// newest first. The result is always a non-nil slice so the history payload
// stays array-typed even when the archive is disabled.
func GetArchivedAssessments(sessionID string) ([]models.AssessmentArchive, error) {
	rows := make([]models.AssessmentArchive, 0)
	if database.DB == nil {
		return rows, nil
	}

	err := database.DB.
		Where("session_id = ?", sessionID).
		Order("reviewed_at DESC").
		Find(&rows).Error
	return rows, err
}
