// Package middlewarectx содержит HTTP middleware сервиса: необязательную
// проверку токена пользователя и ограничение частоты запросов.
//
// IdentityMiddleware проверяет Bearer-токен из заголовка Authorization и,
// если он валиден, кладёт утверждения в контекст запроса. Запрос без токена
// или с невалидным токеном продолжается как анонимный: решение о доступе
// принимают обработчики.
package middlewarectx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/mentor-gateway/internal/identity"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
)

// TokenVerifier описывает проверку токена провайдера аутентификации.
type TokenVerifier interface {
	Verify(token string) (*identity.Claims, error)
}

// IdentityMiddleware возвращает middleware, который добавляет в контекст
// проверенную личность пользователя. verifier может быть nil, тогда все
// запросы считаются анонимными.
func IdentityMiddleware(verifier TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.IdentityMiddleware"

			header := r.Header.Get("Authorization")
			if header == "" || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, err := identity.BearerToken(header)
			if err != nil {
				log.Warn("malformed authorization header")
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, identity.ErrTokenInvalid) {
					log.Warn("invalid or expired token", sl.Err(err))
				} else {
					log.Error("failed to verify token", sl.Err(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithClaims(r.Context(), claims)))
		})
	}
}
