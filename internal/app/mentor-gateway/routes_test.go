package mentorgateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mentor-gateway/internal/billingevent"
	"github.com/magabrotheeeer/mentor-gateway/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
	"github.com/magabrotheeeer/mentor-gateway/internal/services/entitlement"
)

type statusStub struct{}

func (statusStub) GetSubscriptionStatus(context.Context, string) (models.SubscriptionStatus, bool, error) {
	return "", false, nil
}

type completerStub struct{}

func (completerStub) Complete(context.Context, []models.ChatMessage, string) (string, error) {
	return "Build a three-statement model first.", nil
}

type reconcilerStub struct{}

func (reconcilerStub) Apply(context.Context, billingevent.Event) error { return nil }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRouter(burst int) http.Handler {
	log := newNoopLogger()
	r := chi.NewRouter()
	RegisterRoutes(r, log, Deps{
		Evaluator:     entitlement.NewEvaluator(statusStub{}, log),
		Completer:     completerStub{},
		EventVerifier: billingevent.NewVerifier("whsec_test"),
		Reconciler:    reconcilerStub{},
		Limiter:       middlewarectx.NewClientLimiter(1, burst),
	})
	return r
}

func TestRoutes(t *testing.T) {
	router := newRouter(10)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/api/v1/health", "", http.StatusOK, `"status":"ok"`},
		{"free chat", http.MethodPost, "/api/v1/chat", `{"messages":[{"role":"user","content":"hi"}]}`, http.StatusOK, "three-statement"},
		{"chat after free message", http.MethodPost, "/api/v1/chat", `{"messages":[{"role":"user","content":"hi"}],"freeMessageUsed":true}`, http.StatusUnauthorized, "auth_required"},
		{"check anonymous", http.MethodGet, "/api/v1/subscription/check", "", http.StatusOK, "not_signed_in"},
		{"recheck anonymous", http.MethodPost, "/api/v1/subscription/recheck", "", http.StatusOK, "not_signed_in"},
		{"webhook without signature", http.MethodPost, "/api/v1/billing/webhook", `{}`, http.StatusBadRequest, ""},
		{"contact not configured", http.MethodPost, "/api/v1/contact", `{"name":"Ann","email":"ann@example.com","message":"hello mentor team"}`, http.StatusInternalServerError, ""},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, "mentor_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRoutes_ChatRateLimited(t *testing.T) {
	router := newRouter(1)
	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
			strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
