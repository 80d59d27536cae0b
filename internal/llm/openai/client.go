// Package openai: клиент OpenAI chat completions.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

const (
	// DefaultBaseURL: адрес API по умолчанию.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel: модель по умолчанию.
	DefaultModel = "gpt-4o-mini"

	providerName = "openai"
	// maxDetail ограничивает объём тела ошибки, попадающего в лог.
	maxDetail = 2048
)

// Message: сообщение в формате chat completions.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client выполняет запросы к OpenAI API.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
}

// NewClient создает клиента. Пустые model и baseURL заменяются значениями по умолчанию.
func NewClient(apiKey, model, baseURL string, temperature float64) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:      apiKey,
		model:       model,
		baseURL:     strings.TrimRight(baseURL, "/"),
		temperature: temperature,
		client:      &http.Client{},
	}
}

// Name возвращает имя провайдера.
func (c *Client) Name() string {
	return providerName
}

// Configured сообщает, задан ли ключ API.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Chat отправляет один запрос и возвращает текст первого варианта ответа.
// Пустая строка означает, что провайдер не вернул ни одного варианта.
// Любая ошибка транспорта или статус, отличный от 200, возвращается как *models.UpstreamError.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai.Chat: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai.Chat: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		detail := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			detail = fmt.Sprintf("timed out after %s", time.Since(start).Round(time.Millisecond))
		}
		return "", &models.UpstreamError{Provider: providerName, Detail: detail, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.UpstreamError{Provider: providerName, StatusCode: resp.StatusCode, Detail: "read body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		detail := string(respBody)
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			detail = errResp.Error.Message
		}
		if len(detail) > maxDetail {
			detail = detail[:maxDetail]
		}
		return "", &models.UpstreamError{Provider: providerName, StatusCode: resp.StatusCode, Detail: detail}
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &models.UpstreamError{Provider: providerName, StatusCode: resp.StatusCode, Detail: "decode response", Err: err}
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
