package router

import (
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/handlers"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionKey = "sessionID"

// SessionLoaderMiddleware assigns each candidate a session identifier on first
// contact and makes it available to handlers on the request context.
func SessionLoaderMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := sessions.Default(c)

		id, ok := store.Get(sessionKey).(string)
		if !ok || id == "" {
			id = uuid.NewString()
			store.Set(sessionKey, id)
			if err := store.Save(); err != nil {
				log.Error("Failed to persist session cookie", zap.Error(err))
			}
		}

		c.Set(handlers.SessionIDKey, id)
		c.Next()
	}
}
