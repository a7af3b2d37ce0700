package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"searchlens/internal/config"
	"searchlens/internal/database"
	"searchlens/internal/session"
)

// Scheduler is responsible for running background jobs
type Scheduler struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	enabled   bool
	isRunning bool
	cfg       *config.Config

	// Mutex to prevent concurrent job executions
	processingMutex sync.Mutex
	isProcessing    bool

	// Job instances
	sessionSweep *SessionSweepJob
	checkpoint   *CheckpointJob

	// Tickers for each job type
	sweepTicker      *time.Ticker
	checkpointTicker *time.Ticker
}

func NewScheduler(dbManager *database.DBManager, sessions *session.Registry, logger *slog.Logger) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := config.GetConfig()

	s := &Scheduler{
		dbManager: dbManager,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		enabled:   true,
		isRunning: false,
		cfg:       cfg,
	}

	// Initialize job instances
	s.sessionSweep = NewSessionSweepJob(sessions, logger)
	s.checkpoint = NewCheckpointJob(dbManager, logger)

	return s, nil
}

// executeJobSafely runs a job only if no other job is currently executing
func (s *Scheduler) executeJobSafely(jobName string, jobFunc func() error) {
	s.processingMutex.Lock()
	if s.isProcessing {
		s.logger.Debug("Skipping job execution - previous job still running", slog.String("job", jobName))
		s.processingMutex.Unlock()
		return
	}
	s.isProcessing = true
	s.processingMutex.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in background job",
				slog.String("job", jobName),
				slog.Any("panic", r))
		}

		s.processingMutex.Lock()
		s.isProcessing = false
		s.processingMutex.Unlock()
	}()

	if err := jobFunc(); err != nil {
		s.logger.Error("Error executing job", slog.String("job", jobName), slog.Any("error", err))
	}
}

// Start begins all background jobs
func (s *Scheduler) Start() error {
	if !s.enabled {
		s.logger.Info("Background jobs are disabled.")
		return nil
	}

	if s.isRunning {
		s.logger.Info("Background jobs already running.")
		return nil
	}

	s.logger.Info("Starting background jobs...")

	s.isRunning = true

	s.startSessionSweepJob()
	s.startCheckpointJob()

	s.logger.Info("Background jobs started",
		slog.Bool("enabled", s.enabled),
		slog.Bool("isRunning", s.isRunning))

	return nil
}

func (s *Scheduler) startSessionSweepJob() {
	interval := s.cfg.JobInterval()
	s.logger.Info("Starting session sweep job", slog.Duration("interval", interval))
	s.sweepTicker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.sweepTicker.C:
				s.executeJobSafely("session_sweep", s.sessionSweep.Run)
			case <-s.ctx.Done():
				s.logger.Info("Session sweep job stopped")
				return
			}
		}
	}()
}

func (s *Scheduler) startCheckpointJob() {
	interval := 24 * time.Hour
	s.logger.Info("Starting database checkpoint job", slog.Duration("interval", interval))
	s.checkpointTicker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.checkpointTicker.C:
				s.executeJobSafely("db_checkpoint", s.checkpoint.Run)
			case <-s.ctx.Done():
				s.logger.Info("Database checkpoint job stopped")
				return
			}
		}
	}()
}

// Stop halts all background jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background jobs...")
	s.enabled = false

	if s.sweepTicker != nil {
		s.sweepTicker.Stop()
	}
	if s.checkpointTicker != nil {
		s.checkpointTicker.Stop()
	}

	s.cancel()
	s.isRunning = false
	s.logger.Info("Background jobs stopped")
}

// IsRunning returns whether jobs are currently running
func (s *Scheduler) IsRunning() bool {
	return s.isRunning
}

// SweepSessions allows manual triggering of the session sweep
func (s *Scheduler) SweepSessions() error {
	if !s.enabled {
		return nil
	}
	return s.sessionSweep.Run()
}
