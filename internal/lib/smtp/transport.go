package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/magabrotheeeer/mentor-gateway/internal/config"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

const dialTimeout = 10 * time.Second

// Transport доставляет письма через SMTP-сервер с обязательным STARTTLS.
// Каждое письмо отправляется в отдельном соединении.
type Transport struct {
	cfg  config.SMTP
	dial func(ctx context.Context) (session, error)
	log  *slog.Logger
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	t := &Transport{cfg: cfg, log: log.With(slog.String("component", "smtp"))}
	t.dial = t.open
	return t
}

// Configured сообщает, заданы ли адрес сервера и учётные данные.
func (t *Transport) Configured() bool {
	return t.cfg.Host != "" && t.cfg.User != "" && t.cfg.Pass != ""
}

// From возвращает адрес отправителя. Им служит пользователь SMTP.
func (t *Transport) From() string {
	return t.cfg.User
}

// Send отправляет письмо. Незаданные настройки дают models.ErrConfiguration,
// письмо без получателей даёт models.ErrValidation.
func (t *Transport) Send(ctx context.Context, msg Message) error {
	const op = "smtp.Send"

	if !t.Configured() {
		return fmt.Errorf("%s: %w", op, models.ConfigurationMissing("SMTP_HOST/SMTP_USER/SMTP_PASS"))
	}
	if err := msg.validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s, err := t.dial(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			t.log.Debug("smtp session close", sl.Err(err))
		}
	}()

	if err := s.Mail(t.From()); err != nil {
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	for _, addr := range msg.To {
		if err := s.Rcpt(addr); err != nil {
			return fmt.Errorf("%s: rcpt %s: %w", op, addr, err)
		}
	}
	wc, err := s.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err := wc.Write(msg.render(t.From())); err != nil {
		_ = wc.Close()
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%s: data close: %w", op, err)
	}
	if err := s.Quit(); err != nil {
		// Письмо уже принято сервером.
		t.log.Warn("smtp quit failed", sl.Err(err))
	}

	t.log.Info("email sent", slog.Int("recipients", len(msg.To)), slog.String("subject", msg.Subject))
	return nil
}

// open устанавливает соединение, включает STARTTLS и проходит аутентификацию.
// Дедлайн ctx распространяется на весь SMTP-диалог.
func (t *Transport) open(ctx context.Context) (session, error) {
	addr := net.JoinHostPort(t.cfg.Host, t.cfg.Port)
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		t.log.Error("failed to dial SMTP server", slog.String("addr", addr), sl.Err(err))
		return nil, fmt.Errorf("dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("new client: %w", err)
	}

	fail := func(step string, err error) (session, error) {
		t.log.Error("smtp handshake failed", slog.String("step", step), sl.Err(err))
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}
	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fail("starttls", fmt.Errorf("server %s does not support STARTTLS", t.cfg.Host))
	}
	if err := client.StartTLS(&tls.Config{ServerName: t.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
		return fail("starttls", err)
	}
	if err := client.Auth(smtp.PlainAuth("", t.cfg.User, t.cfg.Pass, t.cfg.Host)); err != nil {
		return fail("auth", err)
	}
	return client, nil
}
