// Package billing сводит события Stripe в локальное состояние аккаунтов и
// подписок и создаёт сессии оформления и управления подпиской.
package billing

import (
	"context"
	"time"

	"github.com/magabrotheeeer/mentor-gateway/internal/billingevent"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
	"github.com/magabrotheeeer/mentor-gateway/internal/paymentprovider"
)

// AccountStore определяет методы работы с аккаунтами в хранилище.
// Методы поиска возвращают models.ErrNotFound, если аккаунта нет.
type AccountStore interface {
	GetAccountByIdentity(ctx context.Context, identityID string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByCustomerID(ctx context.Context, customerID string) (*models.Account, error)
	// CreateAccount создаёт аккаунт или возвращает существующий с тем же ключом.
	CreateAccount(ctx context.Context, ref models.AccountRef) (*models.Account, error)
	// AttachIdentity заполняет пустую внешнюю личность. false, если она уже была задана.
	AttachIdentity(ctx context.Context, accountID, identityID string) (bool, error)
	// SetBillingCustomerIfEmpty заполняет пустой billingCustomerId. false, если он уже был задан.
	SetBillingCustomerIfEmpty(ctx context.Context, accountID, customerID string) (bool, error)
}

// SubscriptionStore записывает зеркало подписки.
type SubscriptionStore interface {
	UpsertSubscription(ctx context.Context, sub models.Subscription) (models.UpsertResult, error)
}

// SubscriptionFetcher читает подписку напрямую из Stripe.
type SubscriptionFetcher interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*billingevent.Subscription, error)
}

// Provider: операции Stripe, нужные для оформления подписки.
type Provider interface {
	Configured() bool
	CreateCustomer(ctx context.Context, email, identityID string) (string, error)
	CreateCheckoutSession(ctx context.Context, p paymentprovider.CheckoutParams) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*paymentprovider.SessionSummary, error)
}

// NoticePublisher отправляет уведомление о смене статуса в очередь.
type NoticePublisher interface {
	PublishBillingNotice(ctx context.Context, notice models.BillingNotice) error
}

// EventLog помнит обработанные идентификаторы событий.
type EventLog interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string, ttl time.Duration) error
}
