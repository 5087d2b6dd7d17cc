package gaze

import (
	"math"
)

// Direction is the classified horizontal head orientation relative to the camera.
type Direction string

const (
	Forward      Direction = "Forward"
	LookingLeft  Direction = "LookingLeft"
	LookingRight Direction = "LookingRight"
	Unknown      Direction = "Unknown"
)

// Keypoint is a named facial landmark position in frame pixel coordinates.
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Landmark names the classifier cares about, as reported by the keypoint source.
const (
	LandmarkNose     = "nose"
	LandmarkRightEye = "right_eye"
	LandmarkLeftEye  = "left_eye"
)

// Sample is the per-frame classification result. Samples are ephemeral and
// consumed immediately by the analyzer's aggregation.
type Sample struct {
	Direction  Direction
	Confidence float64
}

// Classifier derives a gaze direction from the nose and eye landmarks.
type Classifier struct {
	// DeviationThreshold is the horizontal nose deviation (in pixels) beyond
	// which the head is considered turned.
	DeviationThreshold float64
	// MinEyeDistance is the interocular distance below which the face is too
	// small for the deviation metric to be reliable.
	MinEyeDistance float64
}

// Classify returns the gaze direction and a confidence in [0,1] for one frame.
// Any missing landmark yields ("Unknown", 0.0).
func (c Classifier) Classify(nose, rightEye, leftEye *Keypoint) Sample {
	if nose == nil || rightEye == nil || leftEye == nil {
		return Sample{Direction: Unknown, Confidence: 0.0}
	}

	eyeCenterX := (rightEye.X + leftEye.X) / 2
	deviation := nose.X - eyeCenterX

	var direction Direction
	switch {
	case deviation > c.DeviationThreshold:
		direction = LookingLeft
	case deviation < -c.DeviationThreshold:
		direction = LookingRight
	default:
		direction = Forward
	}

	// Confidence is the deviation normalized by the interocular distance, which
	// keeps the metric stable across face sizes and camera distances.
	eyeDistance := math.Hypot(rightEye.X-leftEye.X, rightEye.Y-leftEye.Y)

	var confidence float64
	if eyeDistance < c.MinEyeDistance {
		// Face too small or too far away; the deviation is unreliable.
		confidence = 0.0
	} else {
		confidence = math.Min(math.Abs(deviation)/eyeDistance*1.5, 1.0)
	}

	return Sample{Direction: direction, Confidence: round2(confidence)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
