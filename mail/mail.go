package mail

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Mailer interface for one-time code delivery
type Mailer interface {
	// SendCode delivers a sign-in code to the destination address
	SendCode(ctx context.Context, to, code string) error
}

// MailerType represents the mail backend type
type MailerType string

const (
	MailerTypeSMTP MailerType = "smtp"
	MailerTypeLog  MailerType = "log"
)

// Config holds configuration for the mailer
type Config struct {
	Type     MailerType
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewMailer creates a new mailer instance based on configuration
func NewMailer(cfg Config) (Mailer, error) {
	switch cfg.Type {
	case MailerTypeSMTP:
		return NewSMTPMailer(cfg)
	case MailerTypeLog:
		return NewLogMailer(), nil
	default:
		return nil, fmt.Errorf("unknown mailer type: %s", cfg.Type)
	}
}

// NewMailerFromEnv creates a mailer instance from environment variables
func NewMailerFromEnv() (Mailer, error) {
	mailerType := os.Getenv("MAILER_TYPE")
	if mailerType == "" {
		mailerType = "log" // Default to log for development
	}

	switch MailerType(mailerType) {
	case MailerTypeLog:
		return NewLogMailer(), nil

	case MailerTypeSMTP:
		cfg := Config{
			Type:     MailerTypeSMTP,
			Host:     os.Getenv("EMAIL_HOST"),
			Username: os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASSWORD"),
			From:     os.Getenv("EMAIL_FROM"),
		}
		cfg.Port = 587
		if p := os.Getenv("EMAIL_PORT"); p != "" {
			port, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("invalid EMAIL_PORT: %w", err)
			}
			cfg.Port = port
		}
		if cfg.Host == "" {
			return nil, fmt.Errorf("EMAIL_HOST environment variable is required for SMTP mail")
		}
		if cfg.From == "" {
			cfg.From = cfg.Username
		}
		return NewSMTPMailer(cfg)

	default:
		return nil, fmt.Errorf("unknown mailer type: %s", mailerType)
	}
}
