package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func observedArchiveLogger() (*ArchiveLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewArchiveLogger(zap.New(core)), logs
}

func insertQuery() (string, int64) {
	return "INSERT INTO assessment_archives (session_id, decision) VALUES ($1, $2)", 1
}

func TestTraceReportsFailedQueries(t *testing.T) {
	l, logs := observedArchiveLogger()

	l.Trace(context.Background(), time.Now(), insertQuery, errors.New("connection reset"))

	entries := logs.FilterMessage("Archive query failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Contains(t, entries[0].ContextMap()["sql"], "assessment_archives")
}

func TestTraceIgnoresRecordNotFound(t *testing.T) {
	l, logs := observedArchiveLogger()

	l.Trace(context.Background(), time.Now(), insertQuery, gorm.ErrRecordNotFound)

	assert.Zero(t, logs.Len())
}

func TestTraceWarnsOnSlowQueries(t *testing.T) {
	l, logs := observedArchiveLogger()

	l.Trace(context.Background(), time.Now().Add(-time.Second), insertQuery, nil)

	entries := logs.FilterMessage("Archive query slow").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestLogModeSilencesWithoutMutating(t *testing.T) {
	l, logs := observedArchiveLogger()

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), insertQuery, errors.New("boom"))
	assert.Zero(t, logs.Len())

	// The original logger keeps reporting.
	l.Trace(context.Background(), time.Now(), insertQuery, errors.New("boom"))
	assert.Equal(t, 1, logs.Len())
}
