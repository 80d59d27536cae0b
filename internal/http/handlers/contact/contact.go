// Package contact реализует обработчик формы обратной связи.
package contact

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mentor-gateway/internal/http/response"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

// DefaultSubject подставляется, если тема пустая или длиннее maxSubjectLen.
const DefaultSubject = "New contact form submission"

const maxSubjectLen = 200

// Publisher ставит сообщение в очередь на отправку оператору.
type Publisher interface {
	PublishContact(ctx context.Context, msg models.ContactMessage) error
}

// OKResponse: ответ на принятое сообщение.
type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

// Handler обрабатывает POST /contact.
type Handler struct {
	log       *slog.Logger
	publisher Publisher
	validate  *validator.Validate
}

// New создает новый Handler. Без publisher форма отвечает 500.
func New(log *slog.Logger, publisher Publisher) *Handler {
	return &Handler{
		log:       log,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправить сообщение через форму обратной связи
// @Tags Contact
// @Accept  json
// @Produce  json
// @Param request body models.ContactMessage true "Сообщение"
// @Success 200 {object} OKResponse
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Форма не настроена"
// @Failure 502 {object} response.ErrorResponse "Очередь недоступна"
// @Router /contact [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var msg models.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		log.Warn("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	msg = normalize(msg)

	if msg.Company != "" {
		log.Info("honeypot filled, message dropped")
		render.JSON(w, r, OKResponse{OK: true})
		return
	}

	if err := h.validate.Struct(msg); err != nil {
		log.Warn("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		render.Status(r, http.StatusBadRequest)
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if h.publisher == nil {
		log.Error("contact form is not configured")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("contact form not configured"))
		return
	}

	if err := h.publisher.PublishContact(r.Context(), msg); err != nil {
		log.Error("failed to queue contact message", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to send message"))
		return
	}

	log.Info("contact message queued")
	render.JSON(w, r, OKResponse{OK: true})
}

func normalize(msg models.ContactMessage) models.ContactMessage {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Message = strings.TrimSpace(msg.Message)
	msg.Company = strings.TrimSpace(msg.Company)
	if msg.Subject == "" || utf8.RuneCountInString(msg.Subject) > maxSubjectLen {
		msg.Subject = DefaultSubject
	}
	return msg
}
