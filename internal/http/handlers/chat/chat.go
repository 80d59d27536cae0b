// Package chat реализует HTTP-обработчик одного хода диалога с наставником.
//
// Handler проверяет тело запроса, спрашивает у оценщика доступа, можно ли
// обработать ход, и передаёт историю в шлюз языковой модели. Ответ содержит
// реплику модели и обновлённый флаг бесплатного сообщения, который клиент
// должен сохранить у себя.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mentor-gateway/internal/http/response"
	"github.com/magabrotheeeer/mentor-gateway/internal/identity"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/mentor-gateway/internal/metrics"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
	"github.com/magabrotheeeer/mentor-gateway/internal/services/entitlement"
)

// Evaluator описывает проверку доступа к ходу диалога.
type Evaluator interface {
	Evaluate(ctx context.Context, state models.ClientState, identityID, email string) entitlement.Decision
}

// Completer описывает шлюз языковой модели.
type Completer interface {
	Complete(ctx context.Context, msgs []models.ChatMessage, profileLabel string) (string, error)
}

// Handler обрабатывает POST /chat.
type Handler struct {
	log       *slog.Logger
	evaluator Evaluator
	completer Completer
	validate  *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, evaluator Evaluator, completer Completer) *Handler {
	return &Handler{
		log:       log,
		evaluator: evaluator,
		completer: completer,
		validate:  validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправить сообщение наставнику
// @Description Первое сообщение бесплатно, дальше нужен вход и активная подписка.
// @Tags Chat
// @Accept  json
// @Produce  json
// @Param request body models.ChatRequest true "История диалога"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нужен вход (reason=auth_required)"
// @Failure 402 {object} response.ErrorResponse "Нужна подписка (reason=subscription_required)"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Сервис не настроен"
// @Failure 502 {object} response.ErrorResponse "Ошибка языковой модели"
// @Failure 503 {object} response.ErrorResponse "Статус подписки недоступен (reason=status_unavailable)"
// @Router /chat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid messages"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		render.Status(r, http.StatusUnprocessableEntity)
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error("invalid messages"))
		return
	}

	identityID := identity.SubjectFromContext(r.Context())
	session := entitlement.NewClientSession(models.ClientState{HasUsedFreeMessage: req.FreeMessageUsed})
	decision := h.evaluator.Evaluate(r.Context(), session.State(), identityID, identity.EmailFromContext(r.Context()))
	recordDecision(decision)

	if !decision.Allowed {
		log.Info("chat turn denied",
			slog.String("reason", string(decision.Reason)),
			slog.Bool("signed_in", identityID != ""))
		writeDenial(w, r, decision)
		return
	}

	reply, err := h.completer.Complete(r.Context(), req.Messages, req.MentorProfile)
	if err != nil {
		h.writeCompletionError(w, r, log, err)
		return
	}

	session.Commit(decision)
	log.Info("chat turn completed",
		slog.Bool("free_grant", decision.FreeGrant),
		slog.Int("history", len(req.Messages)))
	render.JSON(w, r, models.ChatResponse{
		Reply:           reply,
		FreeMessageUsed: session.State().HasUsedFreeMessage,
	})
}

func (h *Handler) writeCompletionError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		log.Warn("invalid chat history", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
	case errors.Is(err, models.ErrConfiguration):
		log.Error("completion is not configured", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("chat is not configured"))
	case errors.Is(err, models.ErrUpstream):
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("language model error"))
	default:
		log.Error("failed to complete chat", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
	}
}

func writeDenial(w http.ResponseWriter, r *http.Request, d entitlement.Decision) {
	switch d.Reason {
	case entitlement.ReasonAuthRequired:
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Denied("sign in to continue", string(d.Reason)))
	case entitlement.ReasonSubscriptionRequired:
		render.Status(r, http.StatusPaymentRequired)
		render.JSON(w, r, response.Denied("an active subscription is required", string(d.Reason)))
	default:
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Denied("subscription status is temporarily unavailable", string(entitlement.ReasonStatusUnavailable)))
	}
}

func recordDecision(d entitlement.Decision) {
	outcome := "denied"
	reason := string(d.Reason)
	if d.Allowed {
		outcome = "allowed"
		reason = "subscriber"
		if d.FreeGrant {
			reason = "free_message"
		}
	}
	metrics.EntitlementDecisions.WithLabelValues(outcome, reason).Inc()
}
