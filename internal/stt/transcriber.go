// Package stt is the client side of the external speech-to-text collaborator.
package stt

import (
	"context"
	"errors"
)

// ErrTranscription marks failures originating in the transcription service, as
// opposed to local I/O problems. Callers fall back rather than propagate it.
var ErrTranscription = errors.New("transcription failed")

// Transcript is the collaborator's output: the recognized text plus the
// model-reported confidence in [0,100].
type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Transcriber converts the audio track of a recorded answer into text.
// Timeouts are the collaborator's responsibility and surface as ordinary errors.
type Transcriber interface {
	Transcribe(ctx context.Context, videoPath string) (*Transcript, error)
}
