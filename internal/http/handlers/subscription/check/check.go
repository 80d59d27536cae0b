// Package check реализует HTTP-обработчики проверки подписки текущего пользователя.
//
// GET /subscription/check и POST /subscription/recheck отвечают одинаково;
// recheck вызывается клиентом после возврата из checkout, чтобы заново
// прочитать статус, который успел записать вебхук.
package check

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mentor-gateway/internal/identity"
	"github.com/magabrotheeeer/mentor-gateway/internal/metrics"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
	"github.com/magabrotheeeer/mentor-gateway/internal/services/entitlement"
)

// Причины в ответе проверки подписки.
const (
	ReasonNotSignedIn    = "not_signed_in"
	ReasonNoSubscription = "no_subscription"
	ReasonInactive       = "inactive"
	ReasonUnavailable    = "unavailable"
)

// Checker описывает проверку подписки без учёта бесплатной квоты.
type Checker interface {
	Check(ctx context.Context, identityID, email string) entitlement.Decision
}

// Result: тело ответа проверки подписки.
type Result struct {
	Active bool                      `json:"active"`
	Reason string                    `json:"reason,omitempty"`
	Status models.SubscriptionStatus `json:"status,omitempty"`
}

// Handler обрабатывает запросы проверки подписки.
type Handler struct {
	log     *slog.Logger
	checker Checker
}

// New создает новый Handler.
func New(log *slog.Logger, checker Checker) *Handler {
	return &Handler{log: log, checker: checker}
}

// ServeHTTP godoc
// @Summary Проверить подписку
// @Description Возвращает, есть ли у вошедшего пользователя активная подписка.
// @Tags Subscription
// @Produce  json
// @Success 200 {object} check.Result
// @Failure 503 {object} check.Result "Статус подписки недоступен"
// @Router /subscription/check [get]
// @Router /subscription/recheck [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.check"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identityID := identity.SubjectFromContext(r.Context())
	decision := h.checker.Check(r.Context(), identityID, identity.EmailFromContext(r.Context()))
	res := FromDecision(decision)

	outcome := "denied"
	if res.Active {
		outcome = "allowed"
	}
	metrics.EntitlementDecisions.WithLabelValues(outcome, "check_"+orDefault(res.Reason, "active")).Inc()

	if res.Reason == ReasonUnavailable {
		log.Warn("subscription status unavailable")
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, res)
}

// FromDecision переводит решение оценщика в ответ проверки подписки.
func FromDecision(d entitlement.Decision) Result {
	if d.Allowed {
		return Result{Active: true, Status: d.Status}
	}
	switch d.Reason {
	case entitlement.ReasonAuthRequired:
		return Result{Reason: ReasonNotSignedIn}
	case entitlement.ReasonSubscriptionRequired:
		if d.Status == "" {
			return Result{Reason: ReasonNoSubscription}
		}
		return Result{Reason: ReasonInactive, Status: d.Status}
	default:
		return Result{Reason: ReasonUnavailable}
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
