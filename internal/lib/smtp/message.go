package smtp

import (
	"strings"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

// Message: текстовое письмо уведомления.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

func (m Message) validate() error {
	if len(m.To) == 0 {
		return models.ValidationFailed("message has no recipients")
	}
	for _, addr := range m.To {
		if strings.TrimSpace(addr) == "" || strings.ContainsAny(addr, "\r\n") {
			return models.ValidationFailed("invalid recipient address")
		}
	}
	return nil
}

// render собирает письмо в формате RFC 5322. Значения заголовков из
// пользовательского ввода очищаются от переводов строк.
func (m Message) render(from string) []byte {
	headers := []string{
		"From: " + headerValue(from),
		"To: " + headerValue(strings.Join(m.To, ", ")),
		"Subject: " + headerValue(m.Subject),
	}
	if m.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+headerValue(m.ReplyTo))
	}
	headers = append(headers,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"Content-Transfer-Encoding: 8bit",
	)

	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(normalizeNewlines(m.Body))
	return []byte(b.String())
}

func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// normalizeNewlines приводит переводы строк тела к CRLF.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
