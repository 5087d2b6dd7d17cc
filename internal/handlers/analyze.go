package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/config"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/gaze"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/models"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/scoring"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/session"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/stt"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionIDKey is the gin context key under which the session middleware
// stores the candidate's session identifier.
const SessionIDKey = "assessmentSessionID"

// FrameOpener opens a decoded frame stream for an uploaded video file.
type FrameOpener func(path string) (gaze.FrameSource, error)

// AnalyzeHandler runs the full per-question pipeline: upload, transcription,
// gaze analysis, rubric scoring, and session upsert.
type AnalyzeHandler struct {
	log         *zap.Logger
	rubrics     *models.RubricBank
	transcriber stt.Transcriber
	analyzer    *gaze.Analyzer
	scorer      *scoring.QuestionScorer
	sessions    *session.Manager
	openFrames  FrameOpener
	upload      config.UploadConfig
}

func NewAnalyzeHandler(
	log *zap.Logger,
	rubrics *models.RubricBank,
	transcriber stt.Transcriber,
	analyzer *gaze.Analyzer,
	scorer *scoring.QuestionScorer,
	sessions *session.Manager,
	openFrames FrameOpener,
	upload config.UploadConfig,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		log:         log,
		rubrics:     rubrics,
		transcriber: transcriber,
		analyzer:    analyzer,
		scorer:      scorer,
		sessions:    sessions,
		openFrames:  openFrames,
		upload:      upload,
	}
}

// Analyze handles POST /api/analyze. Input errors are rejected before any
// processing; collaborator failures degrade to flagged fallback results.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	sessionID := c.GetString(SessionIDKey)
	if sessionID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not initialized"})
		return
	}

	questionID, err := strconv.Atoi(c.PostForm("questionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid questionId"})
		return
	}
	if _, ok := h.rubrics.ByID(questionID); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown question id"})
		return
	}

	fileHeader, err := c.FormFile("videoFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file part"})
		return
	}
	if fileHeader.Filename == "" || !utils.IsAllowedVideoFile(fileHeader.Filename, h.upload.AllowedExtensions) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no selected file or invalid extension"})
		return
	}
	if fileHeader.Size > h.upload.MaxSizeMB<<20 {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "video exceeds upload size limit"})
		return
	}

	videoPath := filepath.Join(h.upload.Directory, uuid.NewString()+"_"+utils.SanitizeFilename(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, videoPath); err != nil {
		h.log.Error("Failed to save uploaded video", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	// The upload is removed on every path once analysis is done.
	defer os.Remove(videoPath)

	in := scoring.Input{QuestionID: questionID}

	transcript, err := h.transcriber.Transcribe(c.Request.Context(), videoPath)
	if err != nil {
		h.log.Warn("Transcription collaborator failed",
			zap.String("session_id", sessionID),
			zap.Int("question_id", questionID),
			zap.Error(err),
		)
		in.TranscriptionError = err.Error()
	} else {
		in.Transcript = transcript.Text
		in.STTConfidence = transcript.Confidence
	}

	in.Integrity = h.assessIntegrity(videoPath, sessionID, questionID)

	record, err := h.scorer.Score(c.Request.Context(), in)
	if err != nil {
		h.log.Error("Scoring failed", zap.Int("question_id", questionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to score answer"})
		return
	}

	sess := h.sessions.Get(sessionID)
	sess.Upsert(*record)

	h.log.Info("Question analyzed",
		zap.String("session_id", sessionID),
		zap.Int("question_id", questionID),
		zap.Int("score", record.Score),
		zap.Bool("cheating_flag", record.Integrity.CheatingFlag),
	)

	c.JSON(http.StatusOK, gin.H{
		"record":  record,
		"session": sess.Status(),
	})
}

// assessIntegrity opens the frame stream and runs the gaze analyzer. A video
// that cannot be opened is a flaggable event, not an abort.
func (h *AnalyzeHandler) assessIntegrity(videoPath, sessionID string, questionID int) models.IntegrityAssessment {
	src, err := h.openFrames(videoPath)
	if err != nil {
		h.log.Warn("Failed to open video for gaze analysis",
			zap.String("session_id", sessionID),
			zap.Int("question_id", questionID),
			zap.Error(err),
		)
		return gaze.FailSafe("failed to open video file: " + err.Error())
	}
	return h.analyzer.Analyze(src)
}
