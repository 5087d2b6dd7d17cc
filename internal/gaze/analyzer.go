package gaze

import (
	"errors"
	"io"
	"math"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/config"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/models"
	"go.uber.org/zap"
)

// Frame is one decoded video frame handed to the keypoint source. Pixels are
// 8-bit grayscale, row-major.
type Frame struct {
	Index  int
	Width  int
	Height int
	Pixels []byte
}

// FrameSource yields decoded frames from a video. Next returns io.EOF when the
// stream is exhausted. Implementations must be safe to Close after any error.
type FrameSource interface {
	Next() (*Frame, error)
	Close() error
}

// Subject is one detected person with named landmarks. Landmarks a detector
// could not locate are absent from the map.
type Subject struct {
	Landmarks map[string]Keypoint `json:"landmarks"`
}

// KeypointSource detects facial landmarks in a frame. Subjects are ordered by
// detection prominence; the analyzer only uses the first one.
type KeypointSource interface {
	Detect(frame *Frame) ([]Subject, error)
}

// Analyzer drives frame sampling over a video and aggregates per-frame gaze
// samples into a single IntegrityAssessment.
type Analyzer struct {
	keypoints  KeypointSource
	classifier Classifier

	frameSkip          int
	integrityThreshold float64
	confidenceGate     float64

	log *zap.Logger
}

// NewAnalyzer builds an Analyzer from the gaze configuration. The keypoint
// source may be nil when the pose collaborator failed to initialize; analysis
// then fails safe rather than silently passing.
func NewAnalyzer(cfg config.GazeConfig, keypoints KeypointSource, log *zap.Logger) *Analyzer {
	frameSkip := cfg.FrameSkip
	if frameSkip < 1 {
		frameSkip = 1
	}
	return &Analyzer{
		keypoints: keypoints,
		classifier: Classifier{
			DeviationThreshold: cfg.DeviationThreshold,
			MinEyeDistance:     cfg.MinEyeDistance,
		},
		frameSkip:          frameSkip,
		integrityThreshold: cfg.IntegrityThreshold,
		confidenceGate:     cfg.ConfidenceGate,
		log:                log,
	}
}

// FailSafe builds the assessment returned when infrastructure prevents any
// analysis. An unavailable pipeline is a flaggable event requiring human
// review, never a silent pass.
func FailSafe(reason string) models.IntegrityAssessment {
	return models.IntegrityAssessment{
		EyeMovementRatio: 1.0,
		CheatingFlag:     true,
		Violations:       1,
		Error:            reason,
	}
}

// Analyze consumes the frame source to completion and returns one assessment.
// The source is closed on every exit path.
func (a *Analyzer) Analyze(src FrameSource) models.IntegrityAssessment {
	defer src.Close()

	if a.keypoints == nil {
		return FailSafe("keypoint source failed to initialize")
	}

	var (
		totalFrames     int
		processedFrames int
		awayFrames      int
	)

	for {
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			a.log.Warn("Video decode failed mid-stream", zap.Int("frame", totalFrames), zap.Error(err))
			return FailSafe("video decode failed: " + err.Error())
		}

		totalFrames++

		// Sampling: analyze 1 of every frameSkip frames for throughput.
		if totalFrames%a.frameSkip != 0 {
			continue
		}

		subjects, err := a.keypoints.Detect(frame)
		if err != nil {
			a.log.Warn("Keypoint detection failed", zap.Int("frame", totalFrames), zap.Error(err))
			return FailSafe("keypoint detection failed: " + err.Error())
		}

		// Single-candidate assumption: only the first detected subject counts.
		if len(subjects) == 0 || len(subjects[0].Landmarks) < 3 {
			continue
		}

		sample := a.classifier.Classify(
			landmark(subjects[0], LandmarkNose),
			landmark(subjects[0], LandmarkRightEye),
			landmark(subjects[0], LandmarkLeftEye),
		)

		processedFrames++

		// Low-confidence samples are treated as forward-looking so noisy
		// detections never penalize the candidate.
		if sample.Direction != Forward && sample.Confidence > a.confidenceGate {
			awayFrames++
		}
	}

	if processedFrames == 0 {
		// Absence of evidence is not evidence of cheating.
		return models.IntegrityAssessment{
			EyeMovementRatio: 0.0,
			CheatingFlag:     false,
			Violations:       0,
			Error:            "no analyzable frames",
		}
	}

	ratio := float64(awayFrames) / float64(processedFrames)

	a.log.Debug("Gaze analysis complete",
		zap.Int("total_frames", totalFrames),
		zap.Int("processed_frames", processedFrames),
		zap.Int("away_frames", awayFrames),
		zap.Float64("ratio", ratio),
	)

	return models.IntegrityAssessment{
		EyeMovementRatio: round2(ratio),
		CheatingFlag:     ratio > a.integrityThreshold,
		Violations:       int(math.Ceil(ratio * 10)),
	}
}

func landmark(s Subject, name string) *Keypoint {
	kp, ok := s.Landmarks[name]
	if !ok {
		return nil
	}
	return &kp
}
