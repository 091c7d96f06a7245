package service

import (
	"context"
	"log/slog"
	"time"
)

// CountdownService drives the resend countdown of every session in OTP
// verification, one tick per interval.
type CountdownService struct {
	Sessions *SessionService
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewCountdownService creates a countdown driver. If interval is 0 or
// negative, defaults to 1 second.
func NewCountdownService(sessions *SessionService, logger *slog.Logger, interval time.Duration) *CountdownService {
	if interval <= 0 {
		interval = time.Second
	}

	return &CountdownService{
		Sessions: sessions,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background ticker. Call Stop to shut it down.
func (s *CountdownService) Start() {
	go s.run()
	s.Logger.Info("countdown service started", "interval", s.Interval)
}

// Stop blocks until the current tick, if any, has finished.
func (s *CountdownService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("countdown service stopped")
}

func (s *CountdownService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopCh:
			return
		}
	}
}

func (s *CountdownService) tick() {
	n, err := s.Sessions.TickAll(context.Background())
	if err != nil {
		s.Logger.Error("countdown tick failed", "error", err)
		return
	}
	if n > 0 {
		s.Logger.Debug("countdown ticked", "sessions", n)
	}
}
