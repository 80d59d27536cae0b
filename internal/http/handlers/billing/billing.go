// Package billing реализует HTTP-обработчики оформления и управления подпиской:
// создание checkout-сессии, переход в портал клиента и сводку по сессии
// для страницы приветствия.
package billing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mentor-gateway/internal/http/response"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
	"github.com/magabrotheeeer/mentor-gateway/internal/paymentprovider"
)

// Service описывает бизнес-логику оформления подписки.
type Service interface {
	CreateCheckout(ctx context.Context, identityID, email string) (string, error)
	CreatePortal(ctx context.Context, identityID, email string) (string, error)
	SessionSummary(ctx context.Context, sessionID string) (*paymentprovider.SessionSummary, error)
}

// URLResponse: ответ с адресом, на который нужно перейти клиенту.
type URLResponse struct {
	URL string `json:"url"`
}

// writeError сопоставляет доменную ошибку с HTTP-статусом. Подробности
// провайдера остаются в логах.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		log.Warn(msg, sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
	case errors.Is(err, models.ErrAuthRequired):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Denied("sign in to continue", "auth_required"))
	case errors.Is(err, models.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("not found"))
	case errors.Is(err, models.ErrConfiguration):
		log.Error(msg, sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("billing is not configured"))
	case errors.Is(err, models.ErrUpstream):
		log.Error(msg, sl.Upstream(err), sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("payment provider error"))
	default:
		log.Error(msg, sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
	}
}
