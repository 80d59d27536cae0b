package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

const accountColumns = `id, external_identity_id, email, billing_customer_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	var identity, email, customer sql.NullString
	if err := row.Scan(&a.ID, &identity, &email, &customer, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ExternalIdentityID = identity.String
	a.Email = email.String
	a.BillingCustomerID = customer.String
	return &a, nil
}

func (s *Storage) getAccount(ctx context.Context, op, where, key string) (*models.Account, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where + ` ORDER BY created_at LIMIT 1`
	acct, err := scanAccount(s.DB.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return acct, nil
}

// GetAccountByIdentity возвращает аккаунт по внешней личности.
func (s *Storage) GetAccountByIdentity(ctx context.Context, identityID string) (*models.Account, error) {
	return s.getAccount(ctx, "storage.GetAccountByIdentity", "external_identity_id = $1", identityID)
}

// GetAccountByEmail возвращает самый ранний аккаунт с данным адресом.
func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.getAccount(ctx, "storage.GetAccountByEmail", "email = $1", models.NormalizeEmail(email))
}

// GetAccountByCustomerID возвращает аккаунт по идентификатору клиента Stripe.
func (s *Storage) GetAccountByCustomerID(ctx context.Context, customerID string) (*models.Account, error) {
	return s.getAccount(ctx, "storage.GetAccountByCustomerID", "billing_customer_id = $1", customerID)
}

// CreateAccount создаёт аккаунт. Если личность или клиент Stripe уже заняты
// другим аккаунтом, возвращает существующий аккаунт.
func (s *Storage) CreateAccount(ctx context.Context, ref models.AccountRef) (*models.Account, error) {
	const op = "storage.CreateAccount"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if ref.IdentityID == "" && ref.Email == "" && ref.CustomerID == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ValidationFailed("account needs at least one key"))
	}

	query := `INSERT INTO accounts (id, external_identity_id, email, billing_customer_id)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT DO NOTHING
			  RETURNING ` + accountColumns
	acct, err := scanAccount(s.DB.QueryRowContext(ctx, query, uuid.NewString(),
		nullString(ref.IdentityID), nullString(models.NormalizeEmail(ref.Email)), nullString(ref.CustomerID)))
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Конфликт по уникальному ключу: аккаунт создан параллельно.
	if ref.IdentityID != "" {
		acct, err = s.GetAccountByIdentity(ctx, ref.IdentityID)
		if err == nil || !errors.Is(err, models.ErrNotFound) {
			return acct, err
		}
	}
	if ref.CustomerID != "" {
		return s.GetAccountByCustomerID(ctx, ref.CustomerID)
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

// AttachIdentity заполняет пустую внешнюю личность аккаунта. Уже заданная
// личность не заменяется; false означает, что запись не изменилась.
func (s *Storage) AttachIdentity(ctx context.Context, accountID, identityID string) (bool, error) {
	return s.fillIfEmpty(ctx, "storage.AttachIdentity", "external_identity_id", accountID, identityID)
}

// SetBillingCustomerIfEmpty заполняет пустой billing_customer_id. Первый
// записавший побеждает; false означает, что значение уже было задано.
func (s *Storage) SetBillingCustomerIfEmpty(ctx context.Context, accountID, customerID string) (bool, error) {
	return s.fillIfEmpty(ctx, "storage.SetBillingCustomerIfEmpty", "billing_customer_id", accountID, customerID)
}

func (s *Storage) fillIfEmpty(ctx context.Context, op, column, accountID, value string) (bool, error) {
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}
	if value == "" {
		return false, nil
	}

	query := `UPDATE accounts SET ` + column + ` = $2, updated_at = $3
			  WHERE id = $1 AND ` + column + ` IS NULL`
	res, err := s.DB.ExecContext(ctx, query, accountID, value, s.now())
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}
