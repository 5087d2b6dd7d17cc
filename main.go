package main

import (
	"context"
	"os"
	"time"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/config"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/database"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/gaze"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/handlers"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/llm"
	logger "github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/logging"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/models"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/pose"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/router"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/scoring"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/services"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/session"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/stt"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/video"

	"go.uber.org/zap"
)

func main() {
	// Load configuration first; the logger is built from its settings.
	if err := config.Init("."); err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.Init(config.Conf.Logging)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Enable config hot-reloading now that the logger exists.
	config.Watch(log)

	// The result archive is optional; the live session state is in memory.
	if config.Conf.Database.Enabled {
		database.Init(log)
	} else {
		log.Info("Result archive disabled; compiled assessments will not be persisted")
	}

	// Load question rubrics at startup
	rubrics, err := models.LoadRubrics(config.Conf.Scoring.RubricsFile)
	if err != nil {
		log.Fatal("Failed to load rubrics", zap.Error(err))
	}
	log.Info("Rubrics loaded", zap.Int("questions", rubrics.Count()))

	if err := os.MkdirAll(config.Conf.Upload.Directory, 0755); err != nil {
		log.Fatal("Failed to create upload directory", zap.Error(err))
	}

	ctx := context.Background()

	// An uninitializable LLM provider must not keep the service down; every
	// scoring attempt then applies the fallback score instead.
	rubricScorer, err := llm.New(ctx, config.Conf.LLM)
	if err != nil {
		log.Warn("LLM provider failed to initialize; scoring will fall back", zap.Error(err))
		rubricScorer = llm.Unavailable(err)
	}

	// An unconfigured pose service leaves the keypoint source nil; the
	// analyzer then fails safe and flags submissions for human review.
	var keypoints gaze.KeypointSource
	if config.Conf.Pose.BaseURL != "" {
		keypoints = pose.NewClient(config.Conf.Pose)
	} else {
		log.Warn("Pose service not configured; integrity analysis will fail safe")
	}

	analyzer := gaze.NewAnalyzer(config.Conf.Gaze, keypoints, log)
	transcriber := stt.NewClient(config.Conf.STT)
	questionScorer := scoring.NewQuestionScorer(rubricScorer, rubrics, log)

	sessions := session.NewManager(session.Settings{
		Required:      rubrics.Count(),
		ProjectScore:  config.Conf.Scoring.ProjectScore,
		PassThreshold: config.Conf.Scoring.PassThreshold,
	}, log)

	janitor := services.NewJanitor(log, sessions,
		time.Duration(config.Conf.Session.TTLMinutes)*time.Minute,
		time.Duration(config.Conf.Session.JanitorMinutes)*time.Minute,
	)
	janitor.Start()

	openFrames := func(path string) (gaze.FrameSource, error) {
		return video.Open(path, config.Conf.Gaze.FrameWidth, config.Conf.Gaze.FrameHeight)
	}

	analyzeHandler := handlers.NewAnalyzeHandler(log, rubrics, transcriber, analyzer,
		questionScorer, sessions, openFrames, config.Conf.Upload)
	sessionHandler := handlers.NewSessionHandler(log, sessions)

	// Setup router, passing the logger to it
	r := router.Setup(log, analyzeHandler, sessionHandler)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
