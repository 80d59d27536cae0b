// Package sender превращает сообщения из очередей уведомлений в письма.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/smtp"
	"github.com/magabrotheeeer/mentor-gateway/internal/metrics"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

const (
	kindContact = "contact"
	kindBilling = "billing"

	sendTimeout = 30 * time.Second
)

// Mailer доставляет письмо.
type Mailer interface {
	Send(ctx context.Context, msg smtp.Message) error
}

// SenderService отправляет письма через SMTP-транспорт.
//
// Сообщение, которое невозможно разобрать или отправить ни при каких
// повторах, отбрасывается с записью в лог: обработчик возвращает nil,
// и потребитель подтверждает его. Ошибка возвращается только для сбоев
// SMTP, после которых сообщение стоит вернуть в очередь.
type SenderService struct {
	mailer    Mailer
	contactTo string
	appURL    string
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(mailer Mailer, contactTo, appURL string, log *slog.Logger) *SenderService {
	return &SenderService{
		mailer:    mailer,
		contactTo: contactTo,
		appURL:    strings.TrimRight(appURL, "/"),
		log:       log,
	}
}

// SendContact пересылает сообщение формы обратной связи оператору.
func (s *SenderService) SendContact(body []byte) error {
	const op = "sender.SendContact"
	log := s.log.With(sl.Op(op))

	var msg models.ContactMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Error("failed to unmarshal message body, dropped", sl.Err(err))
		metrics.NotificationsSent.WithLabelValues(kindContact, "dropped").Inc()
		return nil
	}
	if s.contactTo == "" {
		log.Error("CONTACT_TO is not set, message dropped")
		metrics.NotificationsSent.WithLabelValues(kindContact, "dropped").Inc()
		return nil
	}

	text := strings.Join([]string{
		"New message from the contact form",
		"",
		"Name: " + msg.Name,
		"Email: " + msg.Email,
		"Subject: " + msg.Subject,
		"",
		msg.Message,
	}, "\n")

	err := s.deliver(smtp.Message{
		To:      []string{s.contactTo},
		ReplyTo: msg.Email,
		Subject: msg.Subject,
		Body:    text,
	})
	return s.record(kindContact, op, err)
}

// SendBillingNotice сообщает пользователю о смене статуса подписки.
// Статусы, для которых нет текста, пропускаются.
func (s *SenderService) SendBillingNotice(body []byte) error {
	const op = "sender.SendBillingNotice"
	log := s.log.With(sl.Op(op))

	var notice models.BillingNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		log.Error("failed to unmarshal message body, dropped", sl.Err(err))
		metrics.NotificationsSent.WithLabelValues(kindBilling, "dropped").Inc()
		return nil
	}
	log = log.With(slog.String("subscription_id", notice.SubscriptionID), slog.String("status", string(notice.Status)))

	if notice.Email == "" {
		log.Info("no recipient, notice skipped")
		metrics.NotificationsSent.WithLabelValues(kindBilling, "skipped").Inc()
		return nil
	}
	subject, text, ok := s.billingText(notice)
	if !ok {
		log.Debug("no template for status, notice skipped")
		metrics.NotificationsSent.WithLabelValues(kindBilling, "skipped").Inc()
		return nil
	}

	err := s.deliver(smtp.Message{To: []string{notice.Email}, Subject: subject, Body: text})
	return s.record(kindBilling, op, err)
}

func (s *SenderService) billingText(n models.BillingNotice) (string, string, bool) {
	switch n.Status {
	case models.StatusActive, models.StatusTrialing:
		text := "Your Finance Career Mentor subscription is active. Pick up the conversation any time:\n" +
			s.appURL + "/chat"
		if !n.PeriodEnd.IsZero() {
			text += fmt.Sprintf("\n\nCurrent period ends on %s.", n.PeriodEnd.Format("January 2, 2006"))
		}
		return "Your subscription is active", text, true
	case models.StatusPastDue, models.StatusUnpaid:
		return "Payment issue with your subscription",
			"We could not process the latest payment for your Finance Career Mentor subscription.\n" +
				"Update your payment method to keep access:\n" + s.appURL + "/api/v1/billing/portal", true
	case models.StatusCanceled:
		return "Your subscription has been canceled",
			"Your Finance Career Mentor subscription has been canceled.\n" +
				"You can resubscribe at any time:\n" + s.appURL + "/subscribe", true
	default:
		return "", "", false
	}
}

func (s *SenderService) record(kind, op string, err error) error {
	if err != nil {
		metrics.NotificationsSent.WithLabelValues(kind, "failed").Inc()
		if errors.Is(err, models.ErrConfiguration) {
			s.log.Error("smtp is not configured, message dropped", sl.Op(op), sl.Err(err))
			return nil
		}
		if errors.Is(err, models.ErrValidation) {
			s.log.Error("message cannot be delivered, dropped", sl.Op(op), sl.Err(err))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.NotificationsSent.WithLabelValues(kind, "sent").Inc()
	return nil
}

func (s *SenderService) deliver(msg smtp.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return s.mailer.Send(ctx, msg)
}
