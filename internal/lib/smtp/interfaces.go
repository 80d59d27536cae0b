// Package smtp отправляет письма уведомлений через SMTP.
package smtp

import "io"

// session: открытое SMTP-соединение после STARTTLS и аутентификации.
type session interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
