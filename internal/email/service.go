package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medportal/portal-api/internal/config"
)

// Service sends portal notifications. All sends are best-effort: callers log
// failures and carry on, a missing mail never aborts a workflow.
type Service interface {
	SendAppointmentBooked(ctx context.Context, to, patientName string) error
	SendAppointmentStatus(ctx context.Context, to, status string) error
	SendPrescriptionReady(ctx context.Context, to string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

// NewService returns an SMTP-backed sender, or a no-op one when no SMTP
// host is configured.
func NewService(cfg config.SMTPConfig) Service {
	if cfg.Host == "" {
		return &noopService{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *smtpService) SendAppointmentBooked(_ context.Context, to, patientName string) error {
	return s.send(to, "New appointment request",
		fmt.Sprintf("Patient %s has requested an appointment with you. Log in to confirm or cancel it.", patientName))
}

func (s *smtpService) SendAppointmentStatus(_ context.Context, to, status string) error {
	return s.send(to, "Appointment update",
		fmt.Sprintf("Your appointment is now %s. Log in for details.", status))
}

func (s *smtpService) SendPrescriptionReady(_ context.Context, to string) error {
	return s.send(to, "Prescription ready",
		"Your doctor has written a prescription for one of your appointments. Log in to view it.")
}

type noopService struct{}

func (noopService) SendAppointmentBooked(context.Context, string, string) error { return nil }
func (noopService) SendAppointmentStatus(context.Context, string, string) error { return nil }
func (noopService) SendPrescriptionReady(context.Context, string) error         { return nil }
