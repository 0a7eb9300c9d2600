package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/the1323/cs166-project-the033-hbai013/internal/config"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/circuitbreaker"
)

type Service interface {
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

// sender is the part of *gomail.Dialer the service uses.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	dialer sender
	from   string
	cb     *circuitbreaker.CircuitBreaker
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return newService(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

func newService(d sender, from string) *smtpService {
	return &smtpService{
		dialer: d,
		from:   from,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "smtp",
			MaxFailures: 3,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
		}),
	}
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if to == "" {
		return fmt.Errorf("recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.cb.Execute(func() error { return s.dialer.DialAndSend(m) }); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}
