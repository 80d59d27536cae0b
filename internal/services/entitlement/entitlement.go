// Package entitlement решает, может ли очередной ход диалога быть обработан.
//
// Правило: первое сообщение бесплатно для любого клиента; дальше нужна
// аутентифицированная личность с активной (active или trialing) подпиской.
// Статус подписки читается из хранилища на каждый запрос и не кэшируется.
// Ошибка хранилища трактуется как отказ.
package entitlement

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

// Reason: машинно-читаемая причина решения.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonAuthRequired         Reason = "auth_required"
	ReasonSubscriptionRequired Reason = "subscription_required"
	ReasonStatusUnavailable    Reason = "status_unavailable"
)

// Decision: результат проверки доступа.
type Decision struct {
	Allowed bool
	Reason  Reason
	// FreeGrant выставляется, когда ход разрешён бесплатной квотой.
	FreeGrant bool
	// Status: статус подписки, если его удалось прочитать.
	Status models.SubscriptionStatus
}

// Err возвращает сентинел-ошибку для отказа или nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonAuthRequired:
		return models.ErrAuthRequired
	case ReasonSubscriptionRequired:
		return models.ErrSubscriptionRequired
	default:
		return ErrStatusUnavailable
	}
}

// ErrStatusUnavailable: статус подписки не удалось получить.
var ErrStatusUnavailable = errors.New("subscription status unavailable")

// StatusReader читает статус подписки, привязанной к внешней личности.
type StatusReader interface {
	// GetSubscriptionStatus возвращает статус лучшей подписки аккаунта.
	// found == false, если аккаунта или подписки нет.
	GetSubscriptionStatus(ctx context.Context, identityID string) (status models.SubscriptionStatus, found bool, err error)
}

// IdentityLinker привязывает личность к аккаунту, созданному оплатой до входа.
// linked == true, если аккаунт найден по email.
type IdentityLinker interface {
	LinkIdentity(ctx context.Context, identityID, email string) (acct *models.Account, linked bool, err error)
}

// Decide: чистая функция принятия решения.
func Decide(state models.ClientState, identityID string, status models.SubscriptionStatus, found bool, statusErr error) Decision {
	if !state.HasUsedFreeMessage {
		return Decision{Allowed: true, FreeGrant: true}
	}
	return decideSubscriber(identityID, status, found, statusErr)
}

func decideSubscriber(identityID string, status models.SubscriptionStatus, found bool, statusErr error) Decision {
	if identityID == "" {
		return Decision{Reason: ReasonAuthRequired}
	}
	if statusErr != nil {
		return Decision{Reason: ReasonStatusUnavailable}
	}
	if !found {
		return Decision{Reason: ReasonSubscriptionRequired}
	}
	if status.Entitled() {
		return Decision{Allowed: true, Status: status}
	}
	return Decision{Reason: ReasonSubscriptionRequired, Status: status}
}

// Evaluator применяет Decide к статусу из хранилища.
type Evaluator struct {
	store  StatusReader
	linker IdentityLinker
	log    *slog.Logger
}

// NewEvaluator создает новый экземпляр Evaluator.
func NewEvaluator(store StatusReader, log *slog.Logger) *Evaluator {
	return &Evaluator{store: store, log: log}
}

// WithLinker включает поиск аккаунта по email, когда подписка личности не найдена.
func (e *Evaluator) WithLinker(linker IdentityLinker) *Evaluator {
	e.linker = linker
	return e
}

// Evaluate решает, может ли клиент отправить очередное сообщение.
// При неиспользованной бесплатной квоте хранилище не опрашивается.
func (e *Evaluator) Evaluate(ctx context.Context, state models.ClientState, identityID, email string) Decision {
	if !state.HasUsedFreeMessage {
		return Decide(state, identityID, "", false, nil)
	}
	return e.Check(ctx, identityID, email)
}

// Check проверяет только подписку, без учёта бесплатной квоты. email из
// токена используется, чтобы найти подписку, оплаченную до входа.
func (e *Evaluator) Check(ctx context.Context, identityID, email string) Decision {
	const op = "entitlement.Check"

	if identityID == "" {
		return decideSubscriber("", "", false, nil)
	}

	status, found, err := e.store.GetSubscriptionStatus(ctx, identityID)
	if err == nil && !found && email != "" && e.linker != nil {
		status, found, err = e.linkAndRead(ctx, identityID, email)
	}
	if err != nil {
		e.log.Error("failed to read subscription status",
			slog.String("op", op),
			slog.String("identity", identityID),
			sl.Err(err))
	}
	return decideSubscriber(identityID, status, found, err)
}

func (e *Evaluator) linkAndRead(ctx context.Context, identityID, email string) (models.SubscriptionStatus, bool, error) {
	_, linked, err := e.linker.LinkIdentity(ctx, identityID, email)
	if err != nil || !linked {
		return "", false, err
	}
	return e.store.GetSubscriptionStatus(ctx, identityID)
}
