package identity

import "context"

type ctxKey int

const claimsKey ctxKey = iota

// WithClaims сохраняет проверенные утверждения токена в контексте.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext возвращает утверждения токена из контекста.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

// SubjectFromContext возвращает идентификатор пользователя или пустую строку
// для анонимного запроса.
func SubjectFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.Subject
	}
	return ""
}

// EmailFromContext возвращает адрес пользователя из токена, если он там есть.
func EmailFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.Email
	}
	return ""
}
