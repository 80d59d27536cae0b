package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

const subscriptionColumns = `subscription_id, billing_customer_id, account_id, plan_id, status,
			      period_end, event_at, updated_at`

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var sub models.Subscription
	var customer, account sql.NullString
	var periodEnd, event sql.NullTime
	if err := row.Scan(&sub.SubscriptionID, &customer, &account, &sub.PlanID, &sub.Status,
		&periodEnd, &event, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	sub.BillingCustomerID = customer.String
	sub.AccountID = account.String
	if periodEnd.Valid {
		sub.PeriodEnd = periodEnd.Time.UTC()
	}
	if event.Valid {
		sub.EventAt = event.Time.UTC()
	}
	sub.UpdatedAt = sub.UpdatedAt.UTC()
	return &sub, nil
}

// GetSubscriptionStatus возвращает статус подписки аккаунта с данной личностью.
// Учитываются и подписки, ещё не связанные с аккаунтом, но принадлежащие его
// клиенту Stripe. При нескольких подписках предпочитается дающая доступ,
// затем самая свежая.
func (s *Storage) GetSubscriptionStatus(ctx context.Context, identityID string) (models.SubscriptionStatus, bool, error) {
	const op = "storage.GetSubscriptionStatus"
	if err := checkCtx(ctx, op); err != nil {
		return "", false, err
	}

	query := `SELECT s.status
			  FROM accounts a
			  JOIN subscriptions s
			    ON s.account_id = a.id
			    OR (s.account_id IS NULL AND s.billing_customer_id = a.billing_customer_id)
			  WHERE a.external_identity_id = $1
			  ORDER BY (s.status IN ('active', 'trialing')) DESC, s.updated_at DESC
			  LIMIT 1`
	var status models.SubscriptionStatus
	err := s.DB.QueryRowContext(ctx, query, identityID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return status, true, nil
}

// GetSubscription возвращает подписку по идентификатору Stripe.
func (s *Storage) GetSubscription(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE subscription_id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, subscriptionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ListSubscriptionsByAccount возвращает все подписки аккаунта, новые первыми.
func (s *Storage) ListSubscriptionsByAccount(ctx context.Context, accountID string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptionsByAccount"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE account_id = $1
			  ORDER BY updated_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertSubscription вставляет или сливает подписку по subscription_id.
// Строка блокируется на время слияния, поэтому параллельные доставки
// одного события применяются последовательно и не создают дубликатов.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) (models.UpsertResult, error) {
	const op = "storage.UpsertSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return models.UpsertResult{}, err
	}
	if sub.SubscriptionID == "" {
		return models.UpsertResult{}, fmt.Errorf("%s: %w", op, models.ValidationFailed("subscription id is empty"))
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.UpsertResult{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := s.upsertTx(ctx, tx, sub)
	if err != nil {
		return models.UpsertResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return models.UpsertResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (s *Storage) upsertTx(ctx context.Context, tx *sql.Tx, sub models.Subscription) (models.UpsertResult, error) {
	lockQuery := `SELECT ` + subscriptionColumns + ` FROM subscriptions
				  WHERE subscription_id = $1
				  FOR UPDATE`
	now := s.now()

	existing, err := scanSubscription(tx.QueryRowContext(ctx, lockQuery, sub.SubscriptionID))
	if errors.Is(err, sql.ErrNoRows) {
		sub.UpdatedAt = now
		insert := `INSERT INTO subscriptions (subscription_id, billing_customer_id, account_id, plan_id,
					   status, period_end, event_at, updated_at)
				   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				   ON CONFLICT (subscription_id) DO NOTHING`
		r, err := tx.ExecContext(ctx, insert, sub.SubscriptionID, nullString(sub.BillingCustomerID),
			nullString(sub.AccountID), sub.PlanID, string(sub.Status), nullTime(sub.PeriodEnd), nullTime(sub.EventAt), now)
		if err != nil {
			return models.UpsertResult{}, err
		}
		if n, _ := r.RowsAffected(); n == 1 {
			return models.UpsertResult{Subscription: sub, Outcome: models.UpsertInserted}, nil
		}
		// Строку вставил параллельный запрос: ждём его блокировку и сливаем.
		existing, err = scanSubscription(tx.QueryRowContext(ctx, lockQuery, sub.SubscriptionID))
	}
	if err != nil {
		return models.UpsertResult{}, err
	}

	merged, outcome := models.MergeSubscription(*existing, sub, now)
	result := models.UpsertResult{Subscription: merged, Previous: existing.Status, Outcome: outcome}
	if outcome == models.UpsertStale {
		return result, nil
	}
	if outcome == models.UpsertUnchanged {
		if merged.EventAt.Equal(existing.EventAt) {
			return result, nil
		}
		// Сдвигаем только event_at, чтобы более старые события считались устаревшими.
		if _, err := tx.ExecContext(ctx, `UPDATE subscriptions SET event_at = $2 WHERE subscription_id = $1`,
			merged.SubscriptionID, nullTime(merged.EventAt)); err != nil {
			return models.UpsertResult{}, err
		}
		return result, nil
	}

	update := `UPDATE subscriptions
			   SET billing_customer_id = $2, account_id = $3, plan_id = $4, status = $5,
			       period_end = $6, event_at = $7, updated_at = $8
			   WHERE subscription_id = $1`
	if _, err := tx.ExecContext(ctx, update, merged.SubscriptionID, nullString(merged.BillingCustomerID),
		nullString(merged.AccountID), merged.PlanID, string(merged.Status), nullTime(merged.PeriodEnd),
		nullTime(merged.EventAt), merged.UpdatedAt); err != nil {
		return models.UpsertResult{}, err
	}
	return result, nil
}
