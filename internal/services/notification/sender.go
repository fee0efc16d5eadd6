// Package services содержит отправку почтовых уведомлений о событиях сессий.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/skillswap/internal/lib/sl"
	"github.com/magabrotheeeer/skillswap/internal/lib/smtp"
	"github.com/magabrotheeeer/skillswap/internal/models"
)

// SenderService превращает события жизненного цикла сессии в письма сторонам.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// Transport описывает SMTP транспорт для отправки писем.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// HandleSessionEvent обрабатывает одно сообщение из очереди событий.
func (s *SenderService) HandleSessionEvent(body []byte) error {
	var event models.SessionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal session event", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject, text := composeMessage(event)
	if subject == "" {
		s.log.Warn("unknown session event type", slog.String("type", event.Type))
		return nil
	}

	var to []string
	if event.LearnerEmail != "" {
		to = append(to, event.LearnerEmail)
	}
	if event.MentorEmail != "" {
		to = append(to, event.MentorEmail)
	}
	if len(to) == 0 {
		s.log.Warn("session event carries no recipients", slog.String("session_id", event.SessionID))
		return nil
	}

	return s.sendEmail(to, subject, text)
}

func composeMessage(event models.SessionEvent) (subject, text string) {
	switch event.Type {
	case models.EventSessionBooked:
		return "SkillSwap: session booked",
			fmt.Sprintf("A tutoring session between %s and %s has been booked.\nCost: %s credits (held in escrow).",
				event.LearnerName, event.MentorName, event.CreditCost.StringFixed(2))
	case models.EventSessionCompleted:
		return "SkillSwap: session completed",
			fmt.Sprintf("The tutoring session has been completed.\nThe mentor earned %s credits.",
				event.CreditCost.StringFixed(2))
	case models.EventSessionCancelled:
		return "SkillSwap: session cancelled",
			fmt.Sprintf("The tutoring session has been cancelled.\n%s credits were returned to the learner.",
				event.CreditCost.StringFixed(2))
	}
	return "", ""
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp: %w", err)
	}
	defer func() {
		if err := client.Quit(); err != nil {
			s.log.Warn("failed to quit smtp client", sl.Err(err))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
