package services

import (
	"context"
	"log/slog"
	"time"
)

type PasscodeNotification struct {
	PersonID  uint
	Email     string
	Passcode  string
	ExpiresAt time.Time
}

// PasscodeNotifier delivers migration passcodes out of band.
type PasscodeNotifier interface {
	SendPasscode(ctx context.Context, notification PasscodeNotification) error
}

// LogPasscodeNotifier writes passcodes to the log instead of sending mail.
// Development use only.
type LogPasscodeNotifier struct {
	logger *slog.Logger
}

func NewLogPasscodeNotifier(logger *slog.Logger) *LogPasscodeNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPasscodeNotifier{logger: logger}
}

func (notifier *LogPasscodeNotifier) SendPasscode(ctx context.Context, notification PasscodeNotification) error {
	notifier.logger.InfoContext(ctx, "migration passcode issued",
		"person_id", notification.PersonID,
		"email", notification.Email,
		"passcode", notification.Passcode,
		"expires_at", notification.ExpiresAt,
	)
	return nil
}
