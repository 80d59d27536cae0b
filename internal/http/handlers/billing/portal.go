package billing

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mentor-gateway/internal/identity"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

// PortalHandler обрабатывает GET и POST /billing/portal. GET перенаправляет
// в портал, POST возвращает его адрес.
type PortalHandler struct {
	log       *slog.Logger
	service   Service
	signInURL string
}

// NewPortal создает новый PortalHandler. signInURL: куда отправить
// невошедшего пользователя при GET-запросе.
func NewPortal(log *slog.Logger, service Service, signInURL string) *PortalHandler {
	return &PortalHandler{log: log, service: service, signInURL: signInURL}
}

// ServeHTTP godoc
// @Summary Открыть портал управления подпиской
// @Tags Billing
// @Produce  json
// @Success 200 {object} billing.URLResponse "POST"
// @Success 302 "GET: перенаправление в портал"
// @Failure 401 {object} response.ErrorResponse "Нужен вход"
// @Failure 502 {object} response.ErrorResponse "Ошибка Stripe"
// @Router /billing/portal [get]
// @Router /billing/portal [post]
func (h *PortalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.portal"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	redirect := r.Method == http.MethodGet

	url, err := h.service.CreatePortal(r.Context(),
		identity.SubjectFromContext(r.Context()),
		identity.EmailFromContext(r.Context()))
	if err != nil {
		if redirect && errors.Is(err, models.ErrAuthRequired) && h.signInURL != "" {
			http.Redirect(w, r, h.signInURL, http.StatusFound)
			return
		}
		writeError(w, r, log, "failed to create portal session", err)
		return
	}

	if redirect {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}
	render.JSON(w, r, URLResponse{URL: url})
}
