package models

import (
	"time"

	"github.com/lib/pq"
)

// AssessmentArchive is the persisted audit row for one compiled assessment.
// The live session state stays in memory; only completed compilations land here.
type AssessmentArchive struct {
	ID              uint   `gorm:"primaryKey"`
	SessionID       string `gorm:"index"`
	Decision        string
	ProjectScore    float64
	InterviewScore  int
	TotalScore      float64
	Notes           string
	Scores          pq.Int64Array `gorm:"type:integer[]"`
	CheatingFlagged bool
	ReviewedAt      time.Time
	CreatedAt       time.Time
}
