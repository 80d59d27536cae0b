package billing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

// SessionHandler обрабатывает GET /billing/session?session_id=.
type SessionHandler struct {
	log     *slog.Logger
	service Service
}

// NewSession создает новый SessionHandler.
func NewSession(log *slog.Logger, service Service) *SessionHandler {
	return &SessionHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводка по checkout-сессии
// @Tags Billing
// @Produce  json
// @Param session_id query string true "Идентификатор checkout-сессии"
// @Success 200 {object} paymentprovider.SessionSummary
// @Failure 400 {object} response.ErrorResponse "Нет session_id"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 502 {object} response.ErrorResponse "Ошибка Stripe"
// @Router /billing/session [get]
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.session"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	summary, err := h.service.SessionSummary(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, r, log, "failed to read checkout session", err)
		return
	}
	render.JSON(w, r, summary)
}
