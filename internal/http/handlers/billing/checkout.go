package billing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mentor-gateway/internal/http/response"
	"github.com/magabrotheeeer/mentor-gateway/internal/identity"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
)

// CheckoutRequest: необязательное тело запроса checkout для анонимного покупателя.
type CheckoutRequest struct {
	Email string `json:"email,omitempty"`
}

// CheckoutHandler обрабатывает POST /billing/checkout.
type CheckoutHandler struct {
	log     *slog.Logger
	service Service
}

// NewCheckout создает новый CheckoutHandler.
func NewCheckout(log *slog.Logger, service Service) *CheckoutHandler {
	return &CheckoutHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Создать checkout-сессию
// @Description Для вошедшего пользователя сессия привязывается к его клиенту Stripe.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body billing.CheckoutRequest false "Адрес анонимного покупателя"
// @Success 200 {object} billing.URLResponse
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 500 {object} response.ErrorResponse "Оплата не настроена"
// @Failure 502 {object} response.ErrorResponse "Ошибка Stripe"
// @Router /billing/checkout [post]
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	email := identity.EmailFromContext(r.Context())
	if email == "" {
		email = req.Email
	}
	url, err := h.service.CreateCheckout(r.Context(), identity.SubjectFromContext(r.Context()), email)
	if err != nil {
		writeError(w, r, log, "failed to create checkout session", err)
		return
	}

	log.Info("checkout session created")
	render.JSON(w, r, URLResponse{URL: url})
}
