package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/config"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/gaze"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/llm"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/models"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/scoring"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/session"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/stt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTranscriber struct {
	err error
}

func (f fakeTranscriber) Transcribe(ctx context.Context, videoPath string) (*stt.Transcript, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stt.Transcript{Text: "I built a CNN with TensorFlow for image classification.", Confidence: 92}, nil
}

// forwardKeypoints always detects one subject looking straight at the camera.
type forwardKeypoints struct{}

func (forwardKeypoints) Detect(frame *gaze.Frame) ([]gaze.Subject, error) {
	return []gaze.Subject{{Landmarks: map[string]gaze.Keypoint{
		gaze.LandmarkNose:     {X: 150, Y: 120},
		gaze.LandmarkRightEye: {X: 100, Y: 100},
		gaze.LandmarkLeftEye:  {X: 200, Y: 100},
	}}}, nil
}

type fakeFrameSource struct {
	remaining int
	closed    bool
}

func (f *fakeFrameSource) Next() (*gaze.Frame, error) {
	if f.remaining == 0 {
		return nil, io.EOF
	}
	f.remaining--
	return &gaze.Frame{Width: 640, Height: 360}, nil
}

func (f *fakeFrameSource) Close() error {
	f.closed = true
	return nil
}

type testEnv struct {
	router *gin.Engine
	mock   *llm.MockScorer
}

type envOptions struct {
	transcriber stt.Transcriber
	openFrames  FrameOpener
}

func fiveQuestionBank(t *testing.T) *models.RubricBank {
	t.Helper()
	questions := make([]models.QuestionRubric, 5)
	for i := range questions {
		questions[i] = models.QuestionRubric{
			ID:       i + 1,
			Question: fmt.Sprintf("Question %d", i+1),
			Bands: []models.RubricBand{
				{Score: 4, Description: "Excellent"},
				{Score: 3, Description: "Good"},
				{Score: 2, Description: "Fair"},
				{Score: 1, Description: "Poor"},
			},
		}
	}
	bank, err := models.NewRubricBank(questions...)
	require.NoError(t, err)
	return bank
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	bank := fiveQuestionBank(t)
	mock := llm.NewMockScorer()
	mock.FixedScore = 4

	gazeCfg := config.GazeConfig{
		DeviationThreshold: 15,
		MinEyeDistance:     30,
		FrameSkip:          1,
		IntegrityThreshold: 0.20,
		ConfidenceGate:     0.5,
	}
	analyzer := gaze.NewAnalyzer(gazeCfg, forwardKeypoints{}, log)

	scorer := scoring.NewQuestionScorer(mock, bank, log)
	sessions := session.NewManager(session.Settings{
		Required:      bank.Count(),
		ProjectScore:  100,
		PassThreshold: 15,
	}, log)

	transcriber := opts.transcriber
	if transcriber == nil {
		transcriber = fakeTranscriber{}
	}
	openFrames := opts.openFrames
	if openFrames == nil {
		openFrames = func(path string) (gaze.FrameSource, error) {
			return &fakeFrameSource{remaining: 10}, nil
		}
	}

	upload := config.UploadConfig{
		Directory:         t.TempDir(),
		MaxSizeMB:         50,
		AllowedExtensions: []string{"mp4", "mov", "webm"},
	}

	analyze := NewAnalyzeHandler(log, bank, transcriber, analyzer, scorer, sessions, openFrames, upload)
	sessionH := NewSessionHandler(log, sessions)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(SessionIDKey, "test-session")
		c.Next()
	})
	router.POST("/api/analyze", analyze.Analyze)
	router.GET("/api/session/status", sessionH.Status)
	router.POST("/api/session/reset", sessionH.Reset)
	router.GET("/api/session/summary", sessionH.Summary)
	router.GET("/api/session/history", sessionH.History)

	return &testEnv{router: router, mock: mock}
}

func analyzeRequest(t *testing.T, questionID, filename string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("questionId", questionID))
	part, err := w.CreateFormFile("videoFile", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a video"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type analyzeResponse struct {
	Record  models.ScoreRecord `json:"record"`
	Session session.Status     `json:"session"`
}

func TestAnalyzeRejectsUnknownQuestion(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(analyzeRequest(t, "42", "answer.mp4"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown question id")
}

func TestAnalyzeRejectsInvalidExtension(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(analyzeRequest(t, "1", "answer.exe"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeRejectsMissingFile(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("questionId", "1"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeScoresQuestionAndUpdatesSession(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(analyzeRequest(t, "1", "answer.mp4"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 1, resp.Record.QuestionID)
	assert.Equal(t, 4, resp.Record.Score)
	assert.False(t, resp.Record.Integrity.CheatingFlag)
	assert.Equal(t, 92.0, resp.Record.STTConfidence)
	assert.Equal(t, session.StatePartial, resp.Session.State)
	assert.Equal(t, []int{1}, resp.Session.Answered)
}

func TestAnalyzeTranscriptionFailureFallsBack(t *testing.T) {
	env := newTestEnv(t, envOptions{
		transcriber: fakeTranscriber{err: fmt.Errorf("%w: service unreachable", stt.ErrTranscription)},
	})

	rec := env.do(analyzeRequest(t, "1", "answer.mp4"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 1, resp.Record.Score)
	assert.Contains(t, resp.Record.Reason, "requires manual review")
}

func TestAnalyzeUnopenableVideoFailsSafe(t *testing.T) {
	env := newTestEnv(t, envOptions{
		openFrames: func(path string) (gaze.FrameSource, error) {
			return nil, errors.New("no such codec")
		},
	})

	rec := env.do(analyzeRequest(t, "1", "answer.mp4"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Record.Integrity.CheatingFlag)
	assert.Equal(t, 1.0, resp.Record.Integrity.EyeMovementRatio)
	// Raw score 4 minus the integrity penalty.
	assert.Equal(t, 3, resp.Record.Score)
	assert.Contains(t, resp.Record.Reason, "INTEGRITY CONCERN DETECTED")
}

func TestSummaryRequiresCompleteSession(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(analyzeRequest(t, "1", "answer.mp4"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/session/summary", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["answered"])
	assert.Equal(t, float64(5), resp["required"])
}

func TestFullSessionCompiles(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	for q := 1; q <= 5; q++ {
		rec := env.do(analyzeRequest(t, fmt.Sprint(q), "answer.mp4"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/session/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var final models.FinalAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &final))

	assert.Equal(t, models.DecisionPassed, final.Decision)
	assert.Equal(t, 20, final.ScoresOverview.Interview)
	assert.InDelta(t, 100.0, final.ScoresOverview.Total, 0.001)
	assert.Len(t, final.ReviewChecklistResult.Interviews.Scores, 5)
}

func TestHistoryServesEmptyArrayWithoutArchive(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/session/history", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"history": []}`, rec.Body.String())
}

func TestResetEmptiesSession(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec := env.do(analyzeRequest(t, "1", "answer.mp4"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/session/reset", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/session/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status session.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, session.StateEmpty, status.State)
	assert.Empty(t, status.Answered)
}
