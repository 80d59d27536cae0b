package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

// Linker связывает вошедшего пользователя с аккаунтом, который мог появиться
// раньше входа: оплата без входа создаёт аккаунт только с email и клиентом Stripe.
type Linker struct {
	accounts AccountStore
	log      *slog.Logger
}

// NewLinker создает новый экземпляр Linker.
func NewLinker(accounts AccountStore, log *slog.Logger) *Linker {
	return &Linker{accounts: accounts, log: log}
}

// LinkIdentity возвращает аккаунт личности. Если его нет, ищет аккаунт по
// email и привязывает к нему личность. linked == true, когда аккаунт найден
// через email. nil без ошибки означает, что подходящего аккаунта нет.
func (l *Linker) LinkIdentity(ctx context.Context, identityID, email string) (acct *models.Account, linked bool, err error) {
	const op = "billing.LinkIdentity"

	acct, err = l.accounts.GetAccountByIdentity(ctx, identityID)
	if err == nil {
		return acct, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, false, nil
	}
	acct, err = l.accounts.GetAccountByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if acct.ExternalIdentityID != "" {
		l.log.Warn("account with this email belongs to another identity",
			slog.String("account_id", acct.ID),
			slog.String("identity", identityID))
		return nil, false, nil
	}

	attached, err := l.accounts.AttachIdentity(ctx, acct.ID, identityID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if attached {
		acct.ExternalIdentityID = identityID
		l.log.Info("identity linked to account by email",
			slog.String("account_id", acct.ID),
			slog.String("identity", identityID))
		return acct, true, nil
	}

	// Личность привязана параллельным запросом.
	acct, err = l.accounts.GetAccountByIdentity(ctx, identityID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return acct, true, nil
}
