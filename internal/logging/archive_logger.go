package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// archiveSlowThreshold flags archive queries that take unexpectedly long; the
// archive table is append-mostly and indexed for the history lookup, so
// anything above this is worth a look.
const archiveSlowThreshold = 200 * time.Millisecond

// ArchiveLogger routes GORM's logging for the result archive through zap.
// History lookups that find no archived assessments are normal and are never
// reported as errors.
type ArchiveLogger struct {
	log        *zap.Logger
	level      gormlogger.LogLevel
	slowerThan time.Duration
}

// NewArchiveLogger builds the archive query logger at its default level.
func NewArchiveLogger(log *zap.Logger) *ArchiveLogger {
	return &ArchiveLogger{
		log:        log,
		level:      gormlogger.Warn,
		slowerThan: archiveSlowThreshold,
	}
}

// LogMode returns a copy of the logger at the given level.
func (l *ArchiveLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *ArchiveLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Sugar().Infof(msg, data...)
	}
}

func (l *ArchiveLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Sugar().Warnf(msg, data...)
	}
}

func (l *ArchiveLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Sugar().Errorf(msg, data...)
	}
}

// Trace reports archive queries: failures at Error, slow queries at Warn, and
// everything else at Info when the level allows it.
func (l *ArchiveLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log.Error("Archive query failed", append(fields, zap.Error(err))...)
	case elapsed > l.slowerThan && l.level >= gormlogger.Warn:
		l.log.Warn("Archive query slow", fields...)
	case l.level >= gormlogger.Info:
		l.log.Info("Archive query", fields...)
	}
}
