package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

func TestClient_Chat_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.InDelta(t, 0.3, req.Temperature, 0.0001)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","choices":[{"index":0,"message":{"role":"assistant","content":"Quantify it."},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	c := NewClient("sk-test", "", server.URL+"/v1/", 0.3)
	reply, err := c.Chat(context.Background(), []Message{
		{Role: "system", Content: "be a mentor"},
		{Role: "user", Content: "hi"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Quantify it.", reply)
}

func TestClient_Chat_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"chatcmpl-2","choices":[]}`))
	}))
	defer server.Close()

	reply, err := NewClient("sk-test", "gpt-4o", server.URL, 0).Chat(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestClient_Chat_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	_, err := NewClient("sk-test", "", server.URL, 0).Chat(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUpstream)
	var ue *models.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.Equal(t, "Rate limit reached", ue.Detail)
	assert.NotContains(t, err.Error(), "Rate limit reached")
}

func TestClient_Chat_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient("sk-test", "", server.URL, 0).Chat(ctx, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUpstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Configured(t *testing.T) {
	assert.False(t, NewClient("", "", "", 0).Configured())
	assert.True(t, NewClient("sk", "", "", 0).Configured())
}
