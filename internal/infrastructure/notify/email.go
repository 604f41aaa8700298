// Package notify implements the outbound code-delivery collaborator.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes verification codes to the application log instead of
// dispatching real email. It stands in for the provider integration in
// development and test environments.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendCode(_ context.Context, email, code string) error {
	s.log.Info().
		Str("email", email).
		Str("code", code).
		Msg("2FA verification code issued")
	return nil
}
