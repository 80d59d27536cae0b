// Package models содержит доменные структуры сервиса: аккаунт пользователя,
// зеркало подписки платёжного провайдера, сообщения чата, события биллинга
// и уведомления. Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import (
	"strings"
	"time"
)

// Account представляет конечного пользователя и его связь с платёжным провайдером.
type Account struct {
	ID                 string    // Внутренний идентификатор (uuid)
	ExternalIdentityID string    // Идентификатор у провайдера аутентификации, пустой до входа
	Email              string    // Контактный адрес, может быть известен раньше ExternalIdentityID
	BillingCustomerID  string    // Идентификатор клиента в Stripe, назначается не более одного раза
	CreatedAt          time.Time // Дата создания
	UpdatedAt          time.Time // Дата последнего изменения
}

// AccountRef содержит ключи, по которым событие или запрос ссылается на аккаунт.
type AccountRef struct {
	IdentityID string
	Email      string
	CustomerID string
}

// Empty сообщает, что ни один ключ не известен.
func (r AccountRef) Empty() bool {
	return r.IdentityID == "" && r.Email == "" && r.CustomerID == ""
}

// NormalizeEmail приводит адрес к виду, в котором он хранится и сравнивается.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
