package mail

import (
	"context"
	"log"
)

// LogMailer writes codes to the process log instead of delivering them.
// Used in development when no SMTP server is configured.
type LogMailer struct{}

// NewLogMailer creates a new log mailer
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// SendCode logs the code instead of sending it
func (m *LogMailer) SendCode(ctx context.Context, to, code string) error {
	log.Printf("mail: verification code for %s: %s", to, code)
	return nil
}
