package models

import (
	"errors"
	"fmt"
)

// Базовые ошибки доменной таксономии. Обработчики HTTP сопоставляют их
// с кодами ответа через errors.Is.
var (
	// ErrValidation: некорректная форма запроса (например, messages не список).
	ErrValidation = errors.New("validation error")
	// ErrConfiguration: отсутствует обязательная настройка или секрет.
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstream: внешний провайдер (LLM или платёжный) вернул ошибку.
	ErrUpstream = errors.New("upstream error")
	// ErrAuthRequired: доступ запрещён, так как пользователь не аутентифицирован.
	ErrAuthRequired = errors.New("authentication required")
	// ErrSubscriptionRequired: доступ запрещён из-за отсутствия активной подписки.
	ErrSubscriptionRequired = errors.New("subscription required")
	// ErrSignatureInvalid: событие биллинга не прошло проверку подписи.
	ErrSignatureInvalid = errors.New("signature invalid")
	// ErrNotFound: запись не найдена в хранилище.
	ErrNotFound = errors.New("not found")
)

// UpstreamError описывает неуспешный вызов внешнего провайдера.
// Detail предназначен только для серверных логов.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Detail     string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned status %d", ErrUpstream, e.Provider, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrUpstream, e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrUpstream, e.Provider)
}

// Unwrap позволяет errors.Is(err, ErrUpstream) и доступ к исходной ошибке.
func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstream, e.Err}
	}
	return []error{ErrUpstream}
}

// ValidationFailed оборачивает причину в ErrValidation.
func ValidationFailed(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// ConfigurationMissing оборачивает имя отсутствующей настройки в ErrConfiguration.
func ConfigurationMissing(setting string) error {
	return fmt.Errorf("%w: %s is not set", ErrConfiguration, setting)
}
