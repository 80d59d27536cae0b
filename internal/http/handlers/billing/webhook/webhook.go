// Package webhook реализует приём вебхуков Stripe.
//
// Handler проверяет подпись события, передаёт его в сверщик состояния биллинга
// и отвечает {received:true}. Ошибка обработки возвращает 500, чтобы Stripe
// повторил доставку.
package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mentor-gateway/internal/billingevent"
	"github.com/magabrotheeeer/mentor-gateway/internal/http/response"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/mentor-gateway/internal/metrics"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

const maxBodyBytes = int64(65536)

// Verifier проверяет подпись и разбирает событие.
type Verifier interface {
	Verify(payload []byte, sigHeader string) (billingevent.Event, error)
}

// Reconciler применяет проверенное событие.
type Reconciler interface {
	Apply(ctx context.Context, ev billingevent.Event) error
}

// Handler обрабатывает POST /billing/webhook.
type Handler struct {
	log        *slog.Logger
	verifier   Verifier
	reconciler Reconciler
}

// New создает новый Handler.
func New(log *slog.Logger, verifier Verifier, reconciler Reconciler) *Handler {
	return &Handler{log: log, verifier: verifier, reconciler: reconciler}
}

// ServeHTTP godoc
// @Summary Вебхук Stripe
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param Stripe-Signature header string true "Подпись Stripe"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело события"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	start := time.Now()
	eventType := "unknown"
	status := http.StatusOK
	defer func() {
		metrics.WebhookRequestsTotal.WithLabelValues(eventType, strconv.Itoa(status)).Inc()
		metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Warn("failed to read webhook body", sl.Err(err))
		status = http.StatusBadRequest
		render.Status(r, status)
		render.JSON(w, r, response.Error("failed to read body"))
		return
	}

	ev, err := h.verifier.Verify(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, models.ErrConfiguration) {
			log.Error("webhook secret is not configured", sl.Err(err))
			status = http.StatusInternalServerError
			render.Status(r, status)
			render.JSON(w, r, response.Error("webhook is not configured"))
			return
		}
		if errors.Is(err, models.ErrValidation) {
			log.Warn("signed webhook payload is malformed", sl.Err(err))
			status = http.StatusBadRequest
			render.Status(r, status)
			render.JSON(w, r, response.Error("invalid webhook payload"))
			return
		}
		log.Warn("webhook signature verification failed", sl.Err(err))
		status = http.StatusBadRequest
		render.Status(r, status)
		render.JSON(w, r, response.Error("webhook signature verification failed"))
		return
	}
	eventType = ev.Type
	log = log.With(slog.String("event_id", ev.ID), slog.String("type", ev.Type))

	if err := h.reconciler.Apply(r.Context(), ev); err != nil {
		log.Error("failed to apply billing event", sl.Upstream(err), sl.Err(err))
		status = http.StatusInternalServerError
		render.Status(r, status)
		render.JSON(w, r, response.Error("webhook handling error"))
		return
	}

	log.Info("webhook processed")
	render.JSON(w, r, map[string]bool{"received": true})
}
