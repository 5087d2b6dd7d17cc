package services

import (
	"time"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/session"
	"go.uber.org/zap"
)

// Janitor evicts candidate sessions that have been idle past their TTL.
type Janitor struct {
	log      *zap.Logger
	sessions *session.Manager
	ttl      time.Duration
	interval time.Duration
}

func NewJanitor(log *zap.Logger, sessions *session.Manager, ttl, interval time.Duration) *Janitor {
	return &Janitor{
		log:      log,
		sessions: sessions,
		ttl:      ttl,
		interval: interval,
	}
}

// Start runs the janitor in a goroutine.
func (j *Janitor) Start() {
	j.log.Info("Starting session janitor...",
		zap.Duration("ttl", j.ttl),
		zap.Duration("interval", j.interval),
	)
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			<-ticker.C
			j.sweep()
		}
	}()
}

func (j *Janitor) sweep() {
	evicted := j.sessions.EvictIdle(j.ttl)
	if evicted > 0 {
		j.log.Info("Evicted idle sessions",
			zap.Int("evicted", evicted),
			zap.Int("remaining", j.sessions.Len()),
		)
	}
}
