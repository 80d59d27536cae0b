// Package completion оборачивает вызов языковой модели: проверяет историю,
// добавляет инструкцию персоны и переводит ошибки провайдера в доменные.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/mentor-gateway/internal/llm/openai"
	"github.com/magabrotheeeer/mentor-gateway/internal/metrics"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
	"github.com/magabrotheeeer/mentor-gateway/internal/persona"
)

const (
	// DefaultTimeout ограничивает один вызов провайдера.
	DefaultTimeout = 8 * time.Second
	// FallbackReply возвращается, если провайдер не дал ни одного варианта.
	FallbackReply = "Sorry, I couldn't generate a response."
)

// Provider: провайдер chat completions.
type Provider interface {
	// Configured сообщает, заданы ли учётные данные.
	Configured() bool
	// Chat выполняет ровно один запрос и возвращает текст первого варианта.
	Chat(ctx context.Context, messages []openai.Message) (string, error)
}

// Service реализует шлюз к языковой модели.
type Service struct {
	provider Provider
	validate *validator.Validate
	timeout  time.Duration
	log      *slog.Logger
}

// NewService создает новый экземпляр Service. Нулевой timeout заменяется на DefaultTimeout.
func NewService(provider Provider, timeout time.Duration, log *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		provider: provider,
		validate: validator.New(),
		timeout:  timeout,
		log:      log,
	}
}

type history struct {
	Messages []models.ChatMessage `validate:"required,min=1,dive"`
}

// Complete возвращает ответ модели на историю диалога от имени выбранного наставника.
// Повторных попыток нет.
func (s *Service) Complete(ctx context.Context, msgs []models.ChatMessage, profileLabel string) (string, error) {
	const op = "completion.Complete"
	log := s.log.With(sl.Op(op))

	if err := s.validate.Struct(history{Messages: msgs}); err != nil {
		return "", models.ValidationFailed(describe(err))
	}
	if s.provider == nil || !s.provider.Configured() {
		return "", models.ConfigurationMissing("completion api key")
	}

	ins := persona.Build(profileLabel)
	payload := make([]openai.Message, 0, 1+2*len(ins.Examples)+len(msgs))
	payload = append(payload, openai.Message{Role: "system", Content: ins.System})
	for _, ex := range ins.Examples {
		payload = append(payload,
			openai.Message{Role: models.RoleUser, Content: ex.User},
			openai.Message{Role: models.RoleAssistant, Content: ex.Assistant},
		)
	}
	for _, m := range msgs {
		payload = append(payload, openai.Message{Role: m.Role, Content: m.Content})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.provider.Chat(callCtx, payload)
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CompletionRequests.WithLabelValues("error").Inc()
		var ue *models.UpstreamError
		if !errors.As(err, &ue) {
			ue = &models.UpstreamError{Provider: "completion", Detail: err.Error(), Err: err}
		}
		log.Error("completion provider failed",
			slog.String("persona", ins.Kind.String()),
			sl.Upstream(ue),
			sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, ue)
	}

	if reply == "" {
		metrics.CompletionRequests.WithLabelValues("empty").Inc()
		log.Warn("completion provider returned no candidates", slog.String("persona", ins.Kind.String()))
		return FallbackReply, nil
	}
	metrics.CompletionRequests.WithLabelValues("ok").Inc()
	return reply, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "messages must be a non-empty list"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Role":
		return "message role must be user or assistant"
	case "Content":
		return "message content is required"
	default:
		return "messages must be a non-empty list"
	}
}
