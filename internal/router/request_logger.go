package router

import (
	"net/http"
	"time"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/handlers"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger emits one zap entry per request. Analysis requests run a full
// transcription and gaze pipeline, so latency is always recorded, and every
// entry carries the candidate session id once the session loader has set it.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		// The session loader runs later in the chain but has finished by the
		// time the response is written.
		if sessionID := c.GetString(handlers.SessionIDKey); sessionID != "" {
			fields = append(fields, zap.String("session_id", sessionID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("Server error", fields...)
		case status == http.StatusTooManyRequests:
			log.Warn("Analysis request rate limited", fields...)
		case status >= 400:
			log.Warn("Client error", fields...)
		default:
			// Log successful requests at the Debug level to reduce noise
			log.Debug("Request processed", fields...)
		}
	}
}
