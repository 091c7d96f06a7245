package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/firststore/internal/signup/domain"
	"github.com/aussiebroadwan/firststore/internal/signup/store"
	"github.com/aussiebroadwan/firststore/internal/signup/store/drivers/sqlite"
	"github.com/aussiebroadwan/firststore/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	s := domain.NewSession(idx.New().String(), now)
	s.Step = domain.StepOTPVerification
	s.PhoneNumber = "9876543210"
	s.TermsAccepted = true
	s.OTPDigits = [domain.OTPLength]string{"1", "2", "", "", "", ""}
	s.ResendCountdown = 17
	s.FieldErrors[domain.FieldOTP] = domain.MsgOTPIncomplete

	require.NoError(t, st.Sessions().CreateSession(ctx, s))

	got, err := st.Sessions().GetSession(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestCreateSessionDuplicate(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	s := domain.NewSession(idx.New().String(), time.Now())
	require.NoError(t, st.Sessions().CreateSession(ctx, s))
	require.ErrorIs(t, st.Sessions().CreateSession(ctx, s), store.ErrAlreadyExists)
}

func TestUpdateAndDeleteSession(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	s := domain.NewSession(idx.New().String(), time.Now())
	require.NoError(t, st.Sessions().CreateSession(ctx, s))

	s.Step = domain.StepProfileEntry
	s.FullName = "Jane Doe"
	s.Email = "jane@example.com"
	require.NoError(t, st.Sessions().UpdateSession(ctx, s))

	got, err := st.Sessions().GetSession(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StepProfileEntry, got.Step)
	require.Equal(t, "Jane Doe", got.FullName)

	require.NoError(t, st.Sessions().DeleteSession(ctx, s.ID))

	_, err = st.Sessions().GetSession(ctx, s.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, st.Sessions().DeleteSession(ctx, s.ID), store.ErrNotFound)
	require.ErrorIs(t, st.Sessions().UpdateSession(ctx, s), store.ErrNotFound)
}

func TestListCountingDown(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	now := time.Now()

	phone := domain.NewSession(idx.New().String(), now)

	counting := domain.NewSession(idx.New().String(), now)
	counting.Step = domain.StepOTPVerification

	expired := domain.NewSession(idx.New().String(), now)
	expired.Step = domain.StepOTPVerification
	expired.ResendCountdown = 0

	for _, s := range []domain.Session{phone, counting, expired} {
		require.NoError(t, st.Sessions().CreateSession(ctx, s))
	}

	ids, err := st.Sessions().ListCountingDown(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{counting.ID}, ids)
}

func TestDeleteIdleSessions(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	now := time.Now()

	stale := domain.NewSession(idx.New().String(), now.Add(-time.Hour))
	fresh := domain.NewSession(idx.New().String(), now)
	require.NoError(t, st.Sessions().CreateSession(ctx, stale))
	require.NoError(t, st.Sessions().CreateSession(ctx, fresh))

	n, err := st.Sessions().DeleteIdleSessions(ctx, now.Add(-30*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = st.Sessions().GetSession(ctx, stale.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Sessions().GetSession(ctx, fresh.ID)
	require.NoError(t, err)
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}
