package models

import "time"

// SubscriptionStatus повторяет перечисление статусов подписки Stripe.
type SubscriptionStatus string

const (
	StatusIncomplete        SubscriptionStatus = "incomplete"
	StatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	StatusTrialing          SubscriptionStatus = "trialing"
	StatusActive            SubscriptionStatus = "active"
	StatusPastDue           SubscriptionStatus = "past_due"
	StatusCanceled          SubscriptionStatus = "canceled"
	StatusUnpaid            SubscriptionStatus = "unpaid"
	StatusPaused            SubscriptionStatus = "paused"
)

// Entitled сообщает, даёт ли статус право на неограниченный чат.
func (s SubscriptionStatus) Entitled() bool {
	return s == StatusActive || s == StatusTrialing
}

// Valid сообщает, входит ли статус в известное перечисление.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusIncomplete, StatusIncompleteExpired, StatusTrialing, StatusActive,
		StatusPastDue, StatusCanceled, StatusUnpaid, StatusPaused:
		return true
	}
	return false
}

// Subscription: локальное зеркало объекта подписки Stripe.
// Строки никогда не удаляются, только обновляются на месте.
type Subscription struct {
	SubscriptionID    string             // Первичный ключ, идентификатор подписки в Stripe
	BillingCustomerID string             // Ссылка на клиента Stripe
	AccountID         string             // Связь с аккаунтом, пустая пока не разрешена
	PlanID            string             // Идентификатор цены/плана
	Status            SubscriptionStatus // Последний наблюдаемый статус
	PeriodEnd         time.Time          // Окончание текущего расчётного периода
	EventAt           time.Time          // Время события, из которого получено состояние
	UpdatedAt         time.Time          // Время последней сверки
}

// UpsertOutcome описывает результат применения состояния подписки к хранилищу.
type UpsertOutcome string

const (
	UpsertInserted  UpsertOutcome = "inserted"
	UpsertUpdated   UpsertOutcome = "updated"
	UpsertLinked    UpsertOutcome = "linked"
	UpsertUnchanged UpsertOutcome = "unchanged"
	UpsertStale     UpsertOutcome = "stale"
)

// MergeSubscription сливает входящее состояние подписки с сохранённым.
//
// Правила: поле AccountID заполняется только если оно пустое; события старше
// сохранённого EventAt не меняют статус, план и период; идентичное состояние
// только сдвигает EventAt вперёд, UpdatedAt при этом не меняется.
// Возвращает итоговую строку и исход.
func MergeSubscription(existing, incoming Subscription, now time.Time) (Subscription, UpsertOutcome) {
	merged := existing
	linked := false
	if merged.AccountID == "" && incoming.AccountID != "" {
		merged.AccountID = incoming.AccountID
		linked = true
	}
	if merged.BillingCustomerID == "" && incoming.BillingCustomerID != "" {
		merged.BillingCustomerID = incoming.BillingCustomerID
		linked = true
	}

	stale := !incoming.EventAt.IsZero() && !existing.EventAt.IsZero() && incoming.EventAt.Before(existing.EventAt)
	sameState := existing.Status == incoming.Status &&
		existing.PlanID == incoming.PlanID &&
		existing.PeriodEnd.Equal(incoming.PeriodEnd)

	switch {
	case stale:
		if linked {
			merged.UpdatedAt = now
			return merged, UpsertLinked
		}
		return existing, UpsertStale
	case sameState:
		if incoming.EventAt.After(merged.EventAt) {
			merged.EventAt = incoming.EventAt
		}
		if linked {
			merged.UpdatedAt = now
			return merged, UpsertLinked
		}
		return merged, UpsertUnchanged
	}

	merged.Status = incoming.Status
	merged.PlanID = incoming.PlanID
	merged.PeriodEnd = incoming.PeriodEnd
	if incoming.EventAt.After(merged.EventAt) {
		merged.EventAt = incoming.EventAt
	}
	merged.UpdatedAt = now
	return merged, UpsertUpdated
}

// UpsertResult: итог записи подписки: новая строка, прежний статус и исход.
type UpsertResult struct {
	Subscription Subscription
	Previous     SubscriptionStatus // пустой для новой строки
	Outcome      UpsertOutcome
}

// StatusChanged сообщает, что запись изменила наблюдаемый статус подписки.
func (r UpsertResult) StatusChanged() bool {
	if r.Outcome != UpsertInserted && r.Outcome != UpsertUpdated {
		return false
	}
	return r.Previous != r.Subscription.Status
}
