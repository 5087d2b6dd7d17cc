package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/models"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// GeminiScorer grades transcripts with the Gemini API.
type GeminiScorer struct {
	client    *genai.Client
	modelName string
}

// NewGeminiScorer creates a Scorer backed by the Gemini API.
func NewGeminiScorer(ctx context.Context, apiKey, model string) (*GeminiScorer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &GeminiScorer{client: client, modelName: model}, nil
}

// Score sends the transcript plus the full rubric band text to Gemini and
// parses the JSON grading it returns.
func (g *GeminiScorer) Score(ctx context.Context, transcript string, rubric models.QuestionRubric) (*RubricScore, error) {
	prompt := buildPrompt(transcript, rubric)

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrService, err)
	}

	text := firstText(resp)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrService)
	}

	score, err := parseScore(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrService, err)
	}
	return score, nil
}

func buildPrompt(transcript string, rubric models.QuestionRubric) string {
	var b strings.Builder
	b.WriteString("You are grading a candidate's spoken answer to an interview question.\n\n")
	b.WriteString("Question: ")
	b.WriteString(rubric.Question)
	b.WriteString("\n\nScoring rubric:\n")
	for _, band := range rubric.Bands {
		fmt.Fprintf(&b, "- Score %d: %s\n", band.Score, band.Description)
	}
	b.WriteString("\nTranscript of the answer:\n\"\"\"\n")
	b.WriteString(transcript)
	b.WriteString("\n\"\"\"\n\n")
	b.WriteString("Respond with a single JSON object and nothing else: ")
	b.WriteString(`{"score": <integer 0-4>, "reason": "<one or two sentences>"}`)
	return b.String()
}

// firstText concatenates the textual parts of the first usable candidate.
func firstText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

// parseScore decodes the model's JSON grading, tolerating markdown fences.
func parseScore(text string) (*RubricScore, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var score RubricScore
	if err := json.Unmarshal([]byte(text), &score); err != nil {
		return nil, fmt.Errorf("malformed grading response: %v", err)
	}
	if strings.TrimSpace(score.Reason) == "" {
		return nil, errors.New("grading response missing reason")
	}
	return &score, nil
}
