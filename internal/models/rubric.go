// rubric.go
package models

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// RubricBand describes the expected response quality at one integer score level.
type RubricBand struct {
	Score       int    `yaml:"score" json:"score"`
	Description string `yaml:"description" json:"description"`
}

// QuestionRubric is the static reference data for one interview question.
type QuestionRubric struct {
	ID       int          `yaml:"id" json:"id"`
	Question string       `yaml:"question" json:"question"`
	Bands    []RubricBand `yaml:"bands" json:"bands"`
}

// RubricBank holds all question rubrics, loaded once at process start.
type RubricBank struct {
	Questions []QuestionRubric `yaml:"questions"`

	byID map[int]QuestionRubric
}

// LoadRubrics reads and parses the rubrics YAML file.
func LoadRubrics(path string) (*RubricBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric file: %w", err)
	}

	var bank RubricBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rubric YAML: %w", err)
	}
	if len(bank.Questions) == 0 {
		return nil, fmt.Errorf("rubric file %s contains no questions", path)
	}

	return NewRubricBank(bank.Questions...)
}

// NewRubricBank indexes already-loaded questions into a bank.
func NewRubricBank(questions ...QuestionRubric) (*RubricBank, error) {
	bank := RubricBank{
		Questions: questions,
		byID:      make(map[int]QuestionRubric, len(questions)),
	}
	for _, q := range questions {
		if _, dup := bank.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %d in rubric bank", q.ID)
		}
		bank.byID[q.ID] = q
	}

	sort.Slice(bank.Questions, func(i, j int) bool {
		return bank.Questions[i].ID < bank.Questions[j].ID
	})

	return &bank, nil
}

// ByID returns the rubric for a question id.
func (b *RubricBank) ByID(id int) (QuestionRubric, bool) {
	q, ok := b.byID[id]
	return q, ok
}

// Count returns the number of questions a complete session must answer.
func (b *RubricBank) Count() int {
	return len(b.Questions)
}
