package jobs

import (
	"log/slog"

	"searchlens/internal/session"
)

// SessionSweepJob prunes expired report sessions from the in-memory registry
type SessionSweepJob struct {
	sessions *session.Registry
	logger   *slog.Logger
}

func NewSessionSweepJob(sessions *session.Registry, logger *slog.Logger) *SessionSweepJob {
	return &SessionSweepJob{
		sessions: sessions,
		logger:   logger,
	}
}

// Run removes every session whose idle TTL has elapsed
func (j *SessionSweepJob) Run() error {
	pruned := j.sessions.Sweep()
	if pruned == 0 {
		j.logger.Debug("No expired sessions to sweep")
		return nil
	}

	j.logger.Info("Session sweep finished",
		slog.Int("pruned", pruned),
		slog.Int("remaining", j.sessions.Count()))
	return nil
}
