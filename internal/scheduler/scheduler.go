package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"qa-forum/internal/config"
	"qa-forum/internal/models"
)

// PendingRequestLister lists reviewer requests waiting for an instructor
type PendingRequestLister interface {
	ListPending() ([]models.ReviewerRequest, error)
}

// Digest summarizes the reviewer request backlog
type Digest struct {
	Pending   int
	OldestAge time.Duration
}

// Scheduler runs periodic maintenance tasks
type Scheduler struct {
	requests PendingRequestLister
	config   *config.SchedulerConfig
	cron     *cron.Cron
	now      func() time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(requests PendingRequestLister, cfg *config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		requests: requests,
		config:   cfg,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start registers the enabled tasks and starts the cron runner
func (s *Scheduler) Start() error {
	slog.Info("Starting scheduler", "pending_digest_enabled", s.config.EnablePendingDigest)

	if s.config.EnablePendingDigest {
		if _, err := s.cron.AddFunc(s.config.PendingDigestCron, s.logPendingDigest); err != nil {
			return fmt.Errorf("failed to schedule pending digest: %w", err)
		}
	}

	s.cron.Start()
	slog.Info("Scheduler started")
	return nil
}

// Stop stops the cron runner and waits for running tasks to finish
func (s *Scheduler) Stop() {
	slog.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// PendingDigest computes the current backlog of pending reviewer requests
func (s *Scheduler) PendingDigest() (Digest, error) {
	pending, err := s.requests.ListPending()
	if err != nil {
		return Digest{}, err
	}

	digest := Digest{Pending: len(pending)}
	now := s.now()
	for _, req := range pending {
		if age := now.Sub(req.RequestedAt); age > digest.OldestAge {
			digest.OldestAge = age
		}
	}
	return digest, nil
}

func (s *Scheduler) logPendingDigest() {
	digest, err := s.PendingDigest()
	if err != nil {
		slog.Error("Failed to build pending reviewer request digest", "error", err)
		return
	}

	if digest.Pending == 0 {
		slog.Info("No pending reviewer requests")
		return
	}

	slog.Info("Pending reviewer requests",
		"count", digest.Pending,
		"oldest_age_hours", int(digest.OldestAge.Hours()),
	)
}
