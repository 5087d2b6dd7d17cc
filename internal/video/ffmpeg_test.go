package video

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/config"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/gaze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubDecoder installs a fake ffmpeg ahead of the real one on PATH so the
// decoder's exit behavior can be scripted.
func stubDecoder(t *testing.T, script string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func dummyVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answer.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not a real container"), 0o644))
	return path
}

func TestNextStreamsFramesUntilCleanEOF(t *testing.T) {
	// Two complete 10x10 frames, then a clean exit.
	stubDecoder(t, "head -c 200 /dev/zero")

	src, err := Open(dummyVideo(t), 10, 10)
	require.NoError(t, err)

	first, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, first.Index)
	assert.Len(t, first.Pixels, 100)

	second, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, second.Index)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, src.Close())
	require.NoError(t, src.Close())
}

func TestNextReportsDecoderFailure(t *testing.T) {
	stubDecoder(t, `echo "moov atom not found" >&2; exit 1`)

	src, err := Open(dummyVideo(t), 10, 10)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "ffmpeg failed")
	assert.Contains(t, err.Error(), "moov atom not found")
}

func TestNextReportsTruncatedStream(t *testing.T) {
	// One and a half frames, then a clean exit: mid-frame corruption.
	stubDecoder(t, "head -c 150 /dev/zero")

	src, err := Open(dummyVideo(t), 10, 10)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Next()
	require.NoError(t, err)

	_, err = src.Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "truncated")
}

type noSubjects struct{}

func (noSubjects) Detect(*gaze.Frame) ([]gaze.Subject, error) { return nil, nil }

func TestUndecodableVideoFailsSafe(t *testing.T) {
	stubDecoder(t, "exit 1")

	src, err := Open(dummyVideo(t), 10, 10)
	require.NoError(t, err)

	analyzer := gaze.NewAnalyzer(config.GazeConfig{
		DeviationThreshold: 15,
		MinEyeDistance:     30,
		FrameSkip:          1,
		IntegrityThreshold: 0.20,
		ConfidenceGate:     0.5,
	}, noSubjects{}, zap.NewNop())

	assessment := analyzer.Analyze(src)

	require.True(t, assessment.CheatingFlag)
	assert.Equal(t, 1.0, assessment.EyeMovementRatio)
	assert.Equal(t, 1, assessment.Violations)
	assert.Contains(t, assessment.Error, "video decode failed")
}
