package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/firststore/internal/signup/domain"
	"github.com/aussiebroadwan/firststore/internal/signup/store"
)

const sessionColumns = `id, step, phone_number, terms_accepted, otp_digits, resend_countdown,
	full_name, email, field_errors, created_at, updated_at`

type sessionsRepo struct {
	db *sql.DB
}

// sessionRow is the column form of domain.Session.
type sessionRow struct {
	ID              string
	Step            string
	PhoneNumber     string
	TermsAccepted   bool
	OTPDigits       string
	ResendCountdown int64
	FullName        string
	Email           string
	FieldErrors     string
	CreatedAt       int64
	UpdatedAt       int64
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	row, err := toRow(s)
	if err != nil {
		return err
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM signup_sessions WHERE id = ?`, row.ID).Scan(&exists)
	if err == nil {
		return store.ErrAlreadyExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO signup_sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Step, row.PhoneNumber, row.TermsAccepted, row.OTPDigits, row.ResendCountdown,
		row.FullName, row.Email, row.FieldErrors, row.CreatedAt, row.UpdatedAt,
	)
	return err
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var row sessionRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM signup_sessions WHERE id = ?`, id,
	).Scan(
		&row.ID, &row.Step, &row.PhoneNumber, &row.TermsAccepted, &row.OTPDigits, &row.ResendCountdown,
		&row.FullName, &row.Email, &row.FieldErrors, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return fromRow(row)
}

func (r *sessionsRepo) UpdateSession(ctx context.Context, s domain.Session) error {
	row, err := toRow(s)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE signup_sessions
		SET step = ?, phone_number = ?, terms_accepted = ?, otp_digits = ?, resend_countdown = ?,
			full_name = ?, email = ?, field_errors = ?, updated_at = ?
		WHERE id = ?`,
		row.Step, row.PhoneNumber, row.TermsAccepted, row.OTPDigits, row.ResendCountdown,
		row.FullName, row.Email, row.FieldErrors, row.UpdatedAt, row.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM signup_sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *sessionsRepo) ListCountingDown(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM signup_sessions WHERE step = ? AND resend_countdown > 0 ORDER BY id`,
		domain.StepOTPVerification.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *sessionsRepo) DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM signup_sessions WHERE updated_at < ?`, toMillis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func toRow(s domain.Session) (sessionRow, error) {
	digits, err := json.Marshal(s.OTPDigits)
	if err != nil {
		return sessionRow{}, fmt.Errorf("encode otp digits: %w", err)
	}

	fieldErrors := s.FieldErrors
	if fieldErrors == nil {
		fieldErrors = map[domain.Field]string{}
	}
	errs, err := json.Marshal(fieldErrors)
	if err != nil {
		return sessionRow{}, fmt.Errorf("encode field errors: %w", err)
	}

	return sessionRow{
		ID:              s.ID,
		Step:            s.Step.String(),
		PhoneNumber:     s.PhoneNumber,
		TermsAccepted:   s.TermsAccepted,
		OTPDigits:       string(digits),
		ResendCountdown: int64(s.ResendCountdown),
		FullName:        s.FullName,
		Email:           s.Email,
		FieldErrors:     string(errs),
		CreatedAt:       toMillis(s.CreatedAt),
		UpdatedAt:       toMillis(s.UpdatedAt),
	}, nil
}

func fromRow(row sessionRow) (domain.Session, error) {
	step, err := domain.ParseStep(row.Step)
	if err != nil {
		return domain.Session{}, err
	}

	s := domain.Session{
		ID:              row.ID,
		Step:            step,
		PhoneNumber:     row.PhoneNumber,
		TermsAccepted:   row.TermsAccepted,
		ResendCountdown: int(row.ResendCountdown),
		FullName:        row.FullName,
		Email:           row.Email,
		FieldErrors:     map[domain.Field]string{},
		CreatedAt:       fromMillis(row.CreatedAt),
		UpdatedAt:       fromMillis(row.UpdatedAt),
	}

	if err := json.Unmarshal([]byte(row.OTPDigits), &s.OTPDigits); err != nil {
		return domain.Session{}, fmt.Errorf("decode otp digits: %w", err)
	}
	if err := json.Unmarshal([]byte(row.FieldErrors), &s.FieldErrors); err != nil {
		return domain.Session{}, fmt.Errorf("decode field errors: %w", err)
	}

	return s, nil
}
