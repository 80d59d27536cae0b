package models

import "time"

// ContactMessage: сообщение из формы обратной связи, передаётся через очередь.
type ContactMessage struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=200"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
	Company string `json:"company,omitempty"` // Поле-ловушка для ботов, у людей всегда пустое
}

// BillingNotice: уведомление о смене статуса подписки, передаётся через очередь.
type BillingNotice struct {
	Email          string             `json:"email"`
	SubscriptionID string             `json:"subscription_id"`
	Status         SubscriptionStatus `json:"status"`
	PeriodEnd      time.Time          `json:"period_end"`
}
