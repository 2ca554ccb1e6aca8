package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer delivers codes over SMTP
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// SendCode delivers a sign-in code to the destination address
func (m *SMTPMailer) SendCode(ctx context.Context, to, code string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}

	msg.Subject("Your Verification Code")
	msg.SetBodyString(gomail.TypeTextPlain,
		fmt.Sprintf("Your verification code is: %s. It will expire in 10 minutes.", code))
	msg.AddAlternativeString(gomail.TypeTextHTML, codeEmailHTML(code))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send code email: %w", err)
	}
	return nil
}

func codeEmailHTML(code string) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="text-align: center;">Verification Code</h2>
  <p>Use the following code to sign in to your Voice Chat account. This code is valid for 10 minutes.</p>
  <div style="background-color: #f4f4f4; padding: 20px; text-align: center; border-radius: 5px; margin: 20px 0;">
    <span style="font-size: 32px; font-weight: bold; letter-spacing: 5px;">%s</span>
  </div>
  <p style="font-size: 14px; color: #888; text-align: center;">If you didn't request this code, you can safely ignore this email.</p>
</div>`, code)
}
