// Package identity проверяет токены внешнего провайдера аутентификации
// по его JWKS и передаёт проверенную личность через контекст запроса.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const defaultLeeway = 30 * time.Second

var (
	// ErrTokenMissing: заголовок Authorization отсутствует или не Bearer.
	ErrTokenMissing = errors.New("bearer token missing")
	// ErrTokenInvalid: токен не прошёл проверку подписи или утверждений.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims: утверждения токена, нужные сервису.
type Claims struct {
	Subject   string
	Email     string
	Issuer    string
	ExpiresAt time.Time
}

// Verifier проверяет JWT по ключам JWKS-эндпоинта провайдера.
type Verifier struct {
	issuer  string
	keyfunc keyfunc.Keyfunc
	parser  *jwt.Parser
}

// NewVerifier создаёт проверяющего. Если jwksURL пуст, используется
// стандартный путь /.well-known/jwks.json у издателя. Пустая audience
// отключает проверку aud: часть провайдеров не выставляет её в сессионных токенах.
func NewVerifier(issuer, audience, jwksURL string) (*Verifier, error) {
	const op = "identity.NewVerifier"
	issuer = strings.TrimRight(strings.TrimSpace(issuer), "/")
	if issuer == "" {
		return nil, fmt.Errorf("%s: issuer must be set", op)
	}
	if jwksURL == "" {
		jwksURL = issuer + "/.well-known/jwks.json"
	}

	keyProvider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to init JWKS keyfunc: %w", op, err)
	}

	opts := []jwt.ParserOption{
		jwt.WithLeeway(defaultLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name, jwt.SigningMethodRS384.Name, jwt.SigningMethodRS512.Name}),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &Verifier{
		issuer:  issuer,
		keyfunc: keyProvider,
		parser:  jwt.NewParser(opts...),
	}, nil
}

// Verify проверяет токен и возвращает его утверждения.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, v.keyfunc.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	iss, _ := mapClaims.GetIssuer()
	if strings.TrimRight(iss, "/") != v.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrTokenInvalid, iss)
	}
	sub, _ := mapClaims.GetSubject()
	if sub == "" {
		return nil, fmt.Errorf("%w: token missing sub", ErrTokenInvalid)
	}

	claims := &Claims{
		Subject: sub,
		Issuer:  iss,
		Email:   readString(mapClaims, "email"),
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// BearerToken извлекает токен из значения заголовка Authorization.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrTokenMissing
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenMissing
	}
	return token, nil
}

func readString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
