package router

import (
	"net/http"
	"time"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/config"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/handlers"
	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}
func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
}

// secureHeaders applies the security header policy and rejects any request the
// policy refuses outright.
func secureHeaders(s *secure.Secure) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
		}
	}
}

func Setup(log *zap.Logger, analyze *handlers.AnalyzeHandler, sessionH *handlers.SessionHandler) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	router.MaxMultipartMemory = 8 << 20

	store := cookie.NewStore([]byte(config.Conf.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400,
	})
	router.Use(sessions.Sessions("assessment", store))
	router.Use(SessionLoaderMiddleware(log))

	router.Use(secureHeaders(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})))

	// Video analysis is expensive; keep a per-IP lid on it.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/analyze", limiter, analyze.Analyze)

		sessionRoutes := api.Group("/session")
		{
			sessionRoutes.GET("/status", sessionH.Status)
			sessionRoutes.POST("/reset", sessionH.Reset)
			sessionRoutes.GET("/summary", sessionH.Summary)
			sessionRoutes.GET("/history", sessionH.History)
		}
	}

	return router
}
