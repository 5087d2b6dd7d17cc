package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedVideoFile(t *testing.T) {
	allowed := []string{"mp4", "mov", "webm"}

	assert.True(t, IsAllowedVideoFile("answer.mp4", allowed))
	assert.True(t, IsAllowedVideoFile("ANSWER.MP4", allowed))
	assert.True(t, IsAllowedVideoFile("clip.final.webm", allowed))

	assert.False(t, IsAllowedVideoFile("answer.exe", allowed))
	assert.False(t, IsAllowedVideoFile("answer", allowed))
	assert.False(t, IsAllowedVideoFile("", allowed))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "answer.mp4", SanitizeFilename("answer.mp4"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "my_answer__1_.mp4", SanitizeFilename("my answer (1).mp4"))
}
