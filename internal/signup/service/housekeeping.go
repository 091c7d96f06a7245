package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/firststore/internal/signup/store"
)

// HousekeepingService periodically deletes signup sessions that have been
// abandoned mid-flow.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	TTL      time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service. Non-positive
// values default to a 5 minute interval and a 30 minute TTL.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, ttl time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		TTL:      ttl,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "ttl", s.TTL)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background(), time.Now())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background(), time.Now())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes sessions whose last update is older than the TTL at now.
func (s *HousekeepingService) Cleanup(ctx context.Context, now time.Time) int64 {
	n, err := s.Store.Sessions().DeleteIdleSessions(ctx, now.Add(-s.TTL))
	if err != nil {
		s.Logger.Error("failed to delete idle sessions", "error", err)
		return 0
	}
	if n > 0 {
		s.Logger.Info("housekeeping cleanup completed", "deleted_sessions", n)
	}
	return n
}
