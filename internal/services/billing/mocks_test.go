package billing

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mentor-gateway/internal/billingevent"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
	"github.com/magabrotheeeer/mentor-gateway/internal/paymentprovider"
)

type AccountsMock struct{ mock.Mock }

func accountResult(args mock.Arguments) (*models.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *AccountsMock) GetAccountByIdentity(ctx context.Context, identityID string) (*models.Account, error) {
	return accountResult(m.Called(ctx, identityID))
}
func (m *AccountsMock) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return accountResult(m.Called(ctx, email))
}
func (m *AccountsMock) GetAccountByCustomerID(ctx context.Context, customerID string) (*models.Account, error) {
	return accountResult(m.Called(ctx, customerID))
}
func (m *AccountsMock) CreateAccount(ctx context.Context, ref models.AccountRef) (*models.Account, error) {
	return accountResult(m.Called(ctx, ref))
}
func (m *AccountsMock) AttachIdentity(ctx context.Context, accountID, identityID string) (bool, error) {
	args := m.Called(ctx, accountID, identityID)
	return args.Bool(0), args.Error(1)
}
func (m *AccountsMock) SetBillingCustomerIfEmpty(ctx context.Context, accountID, customerID string) (bool, error) {
	args := m.Called(ctx, accountID, customerID)
	return args.Bool(0), args.Error(1)
}

// memSubs хранит подписки в памяти и применяет то же правило слияния, что и PostgreSQL.
type memSubs struct {
	mu     sync.Mutex
	rows   map[string]models.Subscription
	writes int
	now    time.Time
}

func newMemSubs() *memSubs {
	return &memSubs{rows: map[string]models.Subscription{}, now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *memSubs) UpsertSubscription(_ context.Context, sub models.Subscription) (models.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(time.Second)

	existing, ok := s.rows[sub.SubscriptionID]
	if !ok {
		sub.UpdatedAt = s.now
		s.rows[sub.SubscriptionID] = sub
		s.writes++
		return models.UpsertResult{Subscription: sub, Outcome: models.UpsertInserted}, nil
	}
	merged, outcome := models.MergeSubscription(existing, sub, s.now)
	switch outcome {
	case models.UpsertStale:
	case models.UpsertUnchanged:
		s.rows[sub.SubscriptionID] = merged
	default:
		s.rows[sub.SubscriptionID] = merged
		s.writes++
	}
	return models.UpsertResult{Subscription: merged, Previous: existing.Status, Outcome: outcome}, nil
}

type SubsMock struct{ mock.Mock }

func (m *SubsMock) UpsertSubscription(ctx context.Context, sub models.Subscription) (models.UpsertResult, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(models.UpsertResult), args.Error(1)
}

type FetcherMock struct{ mock.Mock }

func (m *FetcherMock) GetSubscription(ctx context.Context, id string) (*billingevent.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingevent.Subscription), args.Error(1)
}

type NoticesMock struct{ mock.Mock }

func (m *NoticesMock) PublishBillingNotice(ctx context.Context, n models.BillingNotice) error {
	return m.Called(ctx, n).Error(0)
}

type EventLogMock struct{ mock.Mock }

func (m *EventLogMock) Seen(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *EventLogMock) Mark(ctx context.Context, id string, ttl time.Duration) error {
	return m.Called(ctx, id, ttl).Error(0)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) Configured() bool { return m.Called().Bool(0) }
func (m *ProviderMock) CreateCustomer(ctx context.Context, email, identityID string) (string, error) {
	args := m.Called(ctx, email, identityID)
	return args.String(0), args.Error(1)
}
func (m *ProviderMock) CreateCheckoutSession(ctx context.Context, p paymentprovider.CheckoutParams) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}
func (m *ProviderMock) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}
func (m *ProviderMock) GetCheckoutSession(ctx context.Context, id string) (*paymentprovider.SessionSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.SessionSummary), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}
