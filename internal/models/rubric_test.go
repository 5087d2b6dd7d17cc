package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRubrics = `
questions:
  - id: 2
    question: "Second question"
    bands:
      - score: 4
        description: "Excellent"
      - score: 3
        description: "Good"
      - score: 2
        description: "Fair"
      - score: 1
        description: "Poor"
  - id: 1
    question: "First question"
    bands:
      - score: 4
        description: "Excellent"
      - score: 3
        description: "Good"
      - score: 2
        description: "Fair"
      - score: 1
        description: "Poor"
`

func writeRubrics(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rubrics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRubrics(t *testing.T) {
	bank, err := LoadRubrics(writeRubrics(t, sampleRubrics))
	require.NoError(t, err)

	assert.Equal(t, 2, bank.Count())

	// Questions come out sorted by id regardless of file order.
	assert.Equal(t, 1, bank.Questions[0].ID)
	assert.Equal(t, 2, bank.Questions[1].ID)

	q, ok := bank.ByID(2)
	require.True(t, ok)
	assert.Equal(t, "Second question", q.Question)
	assert.Len(t, q.Bands, 4)

	_, ok = bank.ByID(99)
	assert.False(t, ok)
}

func TestLoadRubricsMissingFile(t *testing.T) {
	_, err := LoadRubrics(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRubricsEmpty(t *testing.T) {
	_, err := LoadRubrics(writeRubrics(t, "questions: []"))
	assert.ErrorContains(t, err, "no questions")
}

func TestNewRubricBankRejectsDuplicateIDs(t *testing.T) {
	_, err := NewRubricBank(
		QuestionRubric{ID: 1, Question: "a"},
		QuestionRubric{ID: 1, Question: "b"},
	)
	assert.ErrorContains(t, err, "duplicate question id")
}
