// Package sl содержит вспомогательные атрибуты для логгера slog.
package sl

import (
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

// Err возвращает атрибут "error" с текстом ошибки. Для nil пишется пустая строка.
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Op возвращает атрибут "op" с именем операции.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}

// Upstream раскрывает диагностику внешнего провайдера для серверного лога.
// Если ошибка не *models.UpstreamError, возвращается пустая группа.
func Upstream(err error) slog.Attr {
	var ue *models.UpstreamError
	if !errors.As(err, &ue) {
		return slog.Group("upstream")
	}
	return slog.Group("upstream",
		slog.String("provider", ue.Provider),
		slog.Int("status", ue.StatusCode),
		slog.String("detail", ue.Detail),
	)
}
