package contact

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishContact(ctx context.Context, msg models.ContactMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestContactHandler(t *testing.T) {
	longSubject := strings.Repeat("s", 201)

	tests := []struct {
		name       string
		body       string
		setup      func(p *PublisherMock)
		wantStatus int
		wantOK     bool
	}{
		{
			name: "queued",
			body: `{"name":" Ann ","email":"ann@example.com","subject":"Hi","message":"I want to move into FP&A"}`,
			setup: func(p *PublisherMock) {
				p.On("PublishContact", mock.Anything, models.ContactMessage{
					Name:    "Ann",
					Email:   "ann@example.com",
					Subject: "Hi",
					Message: "I want to move into FP&A",
				}).Return(nil).Once()
			},
			wantStatus: http.StatusOK,
			wantOK:     true,
		},
		{
			name: "long subject replaced",
			body: `{"name":"Ann","email":"ann@example.com","subject":"` + longSubject + `","message":"I want to move into FP&A"}`,
			setup: func(p *PublisherMock) {
				p.On("PublishContact", mock.Anything, mock.MatchedBy(func(m models.ContactMessage) bool {
					return m.Subject == DefaultSubject
				})).Return(nil).Once()
			},
			wantStatus: http.StatusOK,
			wantOK:     true,
		},
		{
			name:       "honeypot silently accepted",
			body:       `{"name":"Bot","email":"bot@example.com","message":"buy cheap things now","company":"Spam Inc"}`,
			wantStatus: http.StatusOK,
			wantOK:     true,
		},
		{
			name:       "invalid json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing name",
			body:       `{"email":"ann@example.com","message":"I want to move into FP&A"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid email",
			body:       `{"name":"Ann","email":"not-an-email","message":"I want to move into FP&A"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "message too short",
			body:       `{"name":"Ann","email":"ann@example.com","message":"   hi      "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "queue failure",
			body: `{"name":"Ann","email":"ann@example.com","message":"I want to move into FP&A"}`,
			setup: func(p *PublisherMock) {
				p.On("PublishContact", mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := new(PublisherMock)
			if tt.setup != nil {
				tt.setup(pub)
			}
			h := New(newNoopLogger(), pub)

			req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantOK {
				var resp OKResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.True(t, resp.OK)
			}
			pub.AssertExpectations(t)
		})
	}
}

func TestContactHandler_NotConfigured(t *testing.T) {
	h := New(newNoopLogger(), nil)
	req := httptest.NewRequest(http.MethodPost, "/contact",
		strings.NewReader(`{"name":"Ann","email":"ann@example.com","message":"I want to move into FP&A"}`))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "contact form not configured")
}
