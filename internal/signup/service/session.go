package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/firststore/internal/signup/domain"
	"github.com/aussiebroadwan/firststore/internal/signup/flow"
	"github.com/aussiebroadwan/firststore/internal/signup/store"
	"github.com/aussiebroadwan/firststore/pkg/idx"
	"github.com/aussiebroadwan/firststore/pkg/slogx"
)

var ErrSessionNotFound = errors.New("signup session not found")

// Dispatcher delivers a one-time code to a phone number.
type Dispatcher interface {
	Dispatch(ctx context.Context, phoneNumber string) error
}

// Result is the outcome of one operation: the session as it stands afterwards
// and the signals raised while applying it. Once the session is done it has
// already been removed from the store.
type Result struct {
	Session domain.Session
	Events  []domain.Event
}

// SessionService hosts many signup flows. Each call loads the session,
// applies one controller operation and persists the outcome.
type SessionService struct {
	Store store.Store
	OTP   Dispatcher

	mu sync.Mutex
}

// Start creates a session positioned at phone entry.
func (s *SessionService) Start(ctx context.Context) (Result, error) {
	id := idx.New().String()
	ctrl := flow.New(id, flow.Hooks{})
	sess := ctrl.Session()

	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		return Result{}, fmt.Errorf("failed to create session: %w", err)
	}

	slogx.FromContext(slogx.WithSession(ctx, id)).Info("signup session started")
	return Result{Session: sess}, nil
}

// Get loads a session. Ids that are not ULIDs are reported as not found
// without touching the store.
func (s *SessionService) Get(ctx context.Context, id string) (domain.Session, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.Session{}, ErrSessionNotFound
	}

	sess, err := s.Store.Sessions().GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

func (s *SessionService) SubmitPhone(ctx context.Context, id, phoneNumber string, termsAccepted bool) (Result, error) {
	return s.apply(ctx, id, func(c *flow.Controller) error {
		return c.SubmitPhone(phoneNumber, termsAccepted)
	})
}

func (s *SessionService) UpdateOTPDigit(ctx context.Context, id string, index int, value string) (Result, error) {
	return s.apply(ctx, id, func(c *flow.Controller) error {
		return c.UpdateOTPDigit(index, value)
	})
}

func (s *SessionService) SubmitOTP(ctx context.Context, id string) (Result, error) {
	return s.apply(ctx, id, (*flow.Controller).SubmitOTP)
}

func (s *SessionService) ResendOTP(ctx context.Context, id string) (Result, error) {
	return s.apply(ctx, id, (*flow.Controller).ResendOTP)
}

func (s *SessionService) SubmitProfile(ctx context.Context, id, fullName, email string) (Result, error) {
	return s.apply(ctx, id, func(c *flow.Controller) error {
		return c.SubmitProfile(fullName, email)
	})
}

func (s *SessionService) GoBack(ctx context.Context, id string) (Result, error) {
	return s.apply(ctx, id, (*flow.Controller).GoBack)
}

// Tick advances the resend countdown of one session by a second.
func (s *SessionService) Tick(ctx context.Context, id string) (Result, error) {
	return s.apply(ctx, id, (*flow.Controller).DecrementCountdown)
}

// TickAll ticks every session whose resend countdown is still running and
// returns how many were advanced. Sessions that finish or leave the OTP step
// between listing and ticking are skipped.
func (s *SessionService) TickAll(ctx context.Context) (int, error) {
	ids, err := s.Store.Sessions().ListCountingDown(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list counting sessions: %w", err)
	}

	var ticked int
	for _, id := range ids {
		_, err := s.Tick(ctx, id)
		switch {
		case err == nil:
			ticked++
		case errors.Is(err, ErrSessionNotFound),
			errors.Is(err, flow.ErrInvalidStep),
			errors.Is(err, flow.ErrFlowClosed):
		default:
			return ticked, err
		}
	}
	return ticked, nil
}

func (s *SessionService) apply(ctx context.Context, id string, op func(*flow.Controller) error) (Result, error) {
	ctx = slogx.WithSession(ctx, id)
	log := slogx.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}

	var events []domain.Event
	ctrl := flow.Resume(sess, s.hooks(ctx, id, &events))

	if err := op(ctrl); err != nil {
		return Result{Session: sess}, err
	}

	if fault := ctrl.Fault(); fault != nil {
		log.Error("signup hook failed",
			slog.String("step", sess.Step.String()),
			slog.Any("error", fault),
		)
	}

	out := ctrl.Session()
	if out.Done() {
		return Result{Session: out, Events: events}, nil
	}

	if err := s.Store.Sessions().UpdateSession(ctx, out); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, ErrSessionNotFound
		}
		return Result{}, fmt.Errorf("failed to save session: %w", err)
	}

	if out.Step != sess.Step {
		log.Info("signup step changed",
			slog.String("from", sess.Step.String()),
			slog.String("to", out.Step.String()),
		)
	}

	return Result{Session: out, Events: events}, nil
}

// hooks wires the controller's outward signals to the store and dispatcher.
// Finishing a flow deletes its session, so no data outlives it.
func (s *SessionService) hooks(ctx context.Context, id string, events *[]domain.Event) flow.Hooks {
	log := slogx.FromContext(ctx)

	finish := func(kind domain.EventKind) func() error {
		return func() error {
			if err := s.Store.Sessions().DeleteSession(ctx, id); err != nil {
				return fmt.Errorf("failed to discard session: %w", err)
			}
			*events = append(*events, domain.Event{Kind: kind})
			log.Info("signup session finished", slog.String("outcome", string(kind)))
			return nil
		}
	}

	return flow.Hooks{
		SendOTP: func(phoneNumber string) error {
			if s.OTP == nil {
				return errors.New("no otp dispatcher configured")
			}
			if err := s.OTP.Dispatch(ctx, phoneNumber); err != nil {
				return err
			}
			*events = append(*events, domain.Event{Kind: domain.EventOTPSent})
			return nil
		},
		Complete: finish(domain.EventCompleted),
		Cancel:   finish(domain.EventCancelled),
		FocusAdvance: func(index int) {
			*events = append(*events, domain.Event{Kind: domain.EventFocusAdvance, Index: index})
		},
	}
}
