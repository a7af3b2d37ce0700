package jobs

import (
	"log/slog"

	"searchlens/internal/database"
)

// CheckpointJob periodically checkpoints the sqlite WAL so the log file does
// not grow unbounded between restarts
type CheckpointJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
}

func NewCheckpointJob(dbManager *database.DBManager, logger *slog.Logger) *CheckpointJob {
	return &CheckpointJob{
		dbManager: dbManager,
		logger:    logger,
	}
}

// Run checkpoints the WAL and truncates it once readers have moved past it.
func (j *CheckpointJob) Run() error {
	j.logger.Debug("Starting database WAL checkpoint")

	if err := j.dbManager.CheckpointWAL("TRUNCATE"); err != nil {
		j.logger.Error("Failed to checkpoint WAL", slog.Any("error", err))
		return err
	}

	j.logger.Debug("Database WAL checkpoint completed")
	return nil
}
