// Package billingevent описывает события Stripe, прошедшие проверку подписи.
//
// Event может быть получен только через Verifier; событие, собранное вручную,
// реконсилятор отвергает.
package billingevent

import (
	"strings"
	"time"
)

// Kind: распознанный вид события.
type Kind int

const (
	// KindIgnored: событие принято, но не обрабатывается.
	KindIgnored Kind = iota
	KindCheckoutCompleted
	KindSubscriptionCreated
	KindSubscriptionUpdated
	KindSubscriptionDeleted
)

func (k Kind) String() string {
	switch k {
	case KindCheckoutCompleted:
		return "checkout.session.completed"
	case KindSubscriptionCreated:
		return "customer.subscription.created"
	case KindSubscriptionUpdated:
		return "customer.subscription.updated"
	case KindSubscriptionDeleted:
		return "customer.subscription.deleted"
	default:
		return "ignored"
	}
}

func kindOf(eventType string) Kind {
	switch eventType {
	case "checkout.session.completed":
		return KindCheckoutCompleted
	case "customer.subscription.created":
		return KindSubscriptionCreated
	case "customer.subscription.updated":
		return KindSubscriptionUpdated
	case "customer.subscription.deleted":
		return KindSubscriptionDeleted
	default:
		return KindIgnored
	}
}

// Ключи metadata, в которых клиент передаёт внешнюю личность.
var identityMetadataKeys = []string{"identity_id", "clerkUserId"}

// Event: проверенное событие. Заполнено ровно одно из полей Checkout или
// Subscription, либо ни одного для KindIgnored.
type Event struct {
	ID           string
	Type         string
	Kind         Kind
	Created      time.Time
	Checkout     *CheckoutSession
	Subscription *Subscription

	verified bool
}

// Verified сообщает, что событие создано этим пакетом после проверки подписи.
func (e Event) Verified() bool {
	return e.verified
}

// CheckoutSession: минимальное представление checkout.session.
type CheckoutSession struct {
	ID                string `json:"id"`
	Mode              string `json:"mode"`
	Customer          string `json:"customer"`
	Subscription      string `json:"subscription"`
	ClientReferenceID string `json:"client_reference_id"`
	CustomerEmail     string `json:"customer_email"`
	CustomerDetails   struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

// IdentityID возвращает внешнюю личность из client_reference_id или metadata.
func (s *CheckoutSession) IdentityID() string {
	if id := strings.TrimSpace(s.ClientReferenceID); id != "" {
		return id
	}
	return identityFromMetadata(s.Metadata)
}

// Email возвращает адрес покупателя, если он известен.
func (s *CheckoutSession) Email() string {
	if e := strings.TrimSpace(s.CustomerDetails.Email); e != "" {
		return e
	}
	return strings.TrimSpace(s.CustomerEmail)
}

// Subscription: минимальное представление объекта subscription.
type Subscription struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	Items            struct {
		Data []SubscriptionItem `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

// SubscriptionItem: позиция подписки.
type SubscriptionItem struct {
	CurrentPeriodEnd int64 `json:"current_period_end"`
	Price            struct {
		ID string `json:"id"`
	} `json:"price"`
}

// FirstPriceID возвращает цену первой позиции подписки.
func (s *Subscription) FirstPriceID() string {
	for _, item := range s.Items.Data {
		if priceID := strings.TrimSpace(item.Price.ID); priceID != "" {
			return priceID
		}
	}
	return ""
}

// PeriodEnd возвращает конец текущего периода. В новых версиях API поле
// переехало в позиции подписки, поэтому проверяются оба места.
func (s *Subscription) PeriodEnd() time.Time {
	end := s.CurrentPeriodEnd
	for _, item := range s.Items.Data {
		if item.CurrentPeriodEnd > end {
			end = item.CurrentPeriodEnd
		}
	}
	if end == 0 {
		return time.Time{}
	}
	return time.Unix(end, 0).UTC()
}

// IdentityID возвращает внешнюю личность из metadata подписки.
func (s *Subscription) IdentityID() string {
	return identityFromMetadata(s.Metadata)
}

func identityFromMetadata(md map[string]string) string {
	for _, k := range identityMetadataKeys {
		if v := strings.TrimSpace(md[k]); v != "" {
			return v
		}
	}
	return ""
}
