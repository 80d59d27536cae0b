package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/mentor-gateway/internal/migrations"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

const pgPort = nat.Port("5432/tcp")

// TestDataFactory создает тестовые данные напрямую в БД.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateAccount создает аккаунт с заданными ключами и возвращает его ID.
func (f *TestDataFactory) CreateAccount(t *testing.T, identityID, email, customerID string) string {
	t.Helper()
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO accounts (external_identity_id, email, billing_customer_id)
		VALUES ($1, $2, $3) RETURNING id`,
		nullString(identityID), nullString(email), nullString(customerID)).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateSubscription создает строку подписки.
func (f *TestDataFactory) CreateSubscription(t *testing.T, sub models.Subscription) {
	t.Helper()
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = time.Now().UTC()
	}
	_, err := f.storage.DB.Exec(`INSERT INTO subscriptions
		(subscription_id, billing_customer_id, account_id, plan_id, status, period_end, event_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.SubscriptionID, nullString(sub.BillingCustomerID), nullString(sub.AccountID), sub.PlanID,
		string(sub.Status), nullTime(sub.PeriodEnd), nullTime(sub.EventAt), sub.UpdatedAt)
	require.NoError(t, err)
}

// CountSubscriptions возвращает число строк подписок.
func (f *TestDataFactory) CountSubscriptions(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, f.storage.DB.QueryRow(`SELECT COUNT(*) FROM subscriptions`).Scan(&n))
	return n
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(pgPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(pgPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, pgPort)
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "failed to apply migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.Close()
		}
		_ = postgresContainer.Terminate(ctx)
	}
	return storage, cleanup
}
