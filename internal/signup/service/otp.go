package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	otpPeriod = 30
	otpDigits = otp.DigitsSix
)

// Sender hands a generated code to a delivery channel.
type Sender interface {
	Send(ctx context.Context, phoneNumber, code string) error
}

// LogSender logs codes instead of delivering them.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, phoneNumber, code string) error {
	s.Logger.DebugContext(ctx, "otp dispatched",
		slog.String("phone_number", phoneNumber),
		slog.String("code", code),
	)
	return nil
}

// OTPDispatcher generates a fresh six digit code per dispatch. Codes are not
// retained anywhere.
type OTPDispatcher struct {
	Issuer string
	Sender Sender

	Now func() time.Time // defaults to time.Now
}

func (d *OTPDispatcher) Dispatch(ctx context.Context, phoneNumber string) error {
	code, err := d.generate(phoneNumber)
	if err != nil {
		return err
	}
	if err := d.Sender.Send(ctx, phoneNumber, code); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}
	return nil
}

func (d *OTPDispatcher) generate(account string) (string, error) {
	issuer := d.Issuer
	if issuer == "" {
		issuer = "FirstStore"
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      otpPeriod,
		Digits:      otpDigits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate otp key: %w", err)
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	code, err := totp.GenerateCodeCustom(key.Secret(), now(), totp.ValidateOpts{
		Period:    otpPeriod,
		Digits:    otpDigits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}
	return code, nil
}
