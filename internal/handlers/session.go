package handlers

import (
	"errors"
	"net/http"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/repository"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler exposes the session state surface: status, reset, summary,
// and the archived history.
type SessionHandler struct {
	log      *zap.Logger
	sessions *session.Manager
}

func NewSessionHandler(log *zap.Logger, sessions *session.Manager) *SessionHandler {
	return &SessionHandler{log: log, sessions: sessions}
}

// Status handles GET /api/session/status.
func (h *SessionHandler) Status(c *gin.Context) {
	sess := h.sessions.Get(c.GetString(SessionIDKey))
	c.JSON(http.StatusOK, sess.Status())
}

// Reset handles POST /api/session/reset. Prior records are gone for good.
func (h *SessionHandler) Reset(c *gin.Context) {
	sessionID := c.GetString(SessionIDKey)
	sess := h.sessions.Get(sessionID)
	sess.Reset()

	h.log.Info("Session reset", zap.String("session_id", sessionID))
	c.JSON(http.StatusOK, gin.H{"session": sess.Status()})
}

// Summary handles GET /api/session/summary. Compilation requires a complete
// session; anything less is reported with the exact answered count.
func (h *SessionHandler) Summary(c *gin.Context) {
	sessionID := c.GetString(SessionIDKey)
	sess := h.sessions.Get(sessionID)

	final, err := sess.Compile()
	if err != nil {
		var incomplete *session.IncompleteError
		if errors.As(err, &incomplete) {
			c.JSON(http.StatusConflict, gin.H{
				"error":    incomplete.Error(),
				"answered": incomplete.Answered,
				"required": incomplete.Required,
			})
			return
		}
		h.log.Error("Failed to compile assessment", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compile assessment"})
		return
	}

	// Archive failures must not block delivery of the compiled result.
	if err := repository.ArchiveFinalAssessment(sessionID, final); err != nil {
		h.log.Error("Failed to archive final assessment", zap.String("session_id", sessionID), zap.Error(err))
	}

	h.log.Info("Assessment compiled",
		zap.String("session_id", sessionID),
		zap.String("decision", final.Decision),
		zap.Int("interview_score", final.ScoresOverview.Interview),
		zap.Float64("total_score", final.ScoresOverview.Total),
	)

	c.JSON(http.StatusOK, final)
}

// History handles GET /api/session/history, serving archived compilations.
func (h *SessionHandler) History(c *gin.Context) {
	sessionID := c.GetString(SessionIDKey)

	rows, err := repository.GetArchivedAssessments(sessionID)
	if err != nil {
		h.log.Error("Failed to load archived assessments", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": rows})
}
