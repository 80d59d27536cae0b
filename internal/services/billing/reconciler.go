package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mentor-gateway/internal/billingevent"
	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/mentor-gateway/internal/metrics"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

// EventTTL: сколько помнить обработанное событие. Stripe повторяет доставку до трёх суток.
const EventTTL = 72 * time.Hour

// unknownPlan записывается, если у подписки нет ни одной цены.
const unknownPlan = "unknown"

// Reconciler применяет проверенные события Stripe к хранилищу.
type Reconciler struct {
	accounts AccountStore
	subs     SubscriptionStore
	fetcher  SubscriptionFetcher
	notices  NoticePublisher
	events   EventLog
	eventTTL time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewReconciler создает новый экземпляр Reconciler. notices и events могут быть nil.
func NewReconciler(accounts AccountStore, subs SubscriptionStore, fetcher SubscriptionFetcher,
	notices NoticePublisher, events EventLog, log *slog.Logger) *Reconciler {
	return &Reconciler{
		accounts: accounts,
		subs:     subs,
		fetcher:  fetcher,
		notices:  notices,
		events:   events,
		eventTTL: EventTTL,
		log:      log,
		now:      time.Now,
	}
}

// WithEventTTL задаёт время хранения отметок об обработанных событиях.
func (r *Reconciler) WithEventTTL(ttl time.Duration) *Reconciler {
	if ttl > 0 {
		r.eventTTL = ttl
	}
	return r
}

// Apply применяет событие. Повторная доставка того же события не меняет состояние.
// Событие отмечается обработанным только после успешного применения.
func (r *Reconciler) Apply(ctx context.Context, ev billingevent.Event) error {
	const op = "billing.Apply"

	if !ev.Verified() {
		return fmt.Errorf("%s: %w", op, models.ErrSignatureInvalid)
	}
	log := r.log.With(sl.Op(op), slog.String("event_id", ev.ID), slog.String("type", ev.Type))

	if r.events != nil && ev.ID != "" {
		seen, err := r.events.Seen(ctx, ev.ID)
		if err != nil {
			log.Warn("failed to check event log", sl.Err(err))
		} else if seen {
			log.Info("duplicate event skipped")
			return nil
		}
	}

	var err error
	switch ev.Kind {
	case billingevent.KindCheckoutCompleted:
		err = r.applyCheckout(ctx, ev, log)
	case billingevent.KindSubscriptionCreated, billingevent.KindSubscriptionUpdated, billingevent.KindSubscriptionDeleted:
		sub := ev.Subscription
		if sub == nil {
			return fmt.Errorf("%s: %w", op, models.ValidationFailed("subscription payload is missing"))
		}
		ref := models.AccountRef{IdentityID: sub.IdentityID(), CustomerID: sub.Customer}
		err = r.applySubscription(ctx, ev.Kind, sub, ref, ev.Created, log)
	case billingevent.KindIgnored:
		log.Debug("event ignored")
	default:
		log.Warn("unhandled event kind", slog.String("kind", ev.Kind.String()))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if r.events != nil && ev.ID != "" {
		if err := r.events.Mark(ctx, ev.ID, r.eventTTL); err != nil {
			log.Warn("failed to mark event as processed", sl.Err(err))
		}
	}
	return nil
}

func (r *Reconciler) applyCheckout(ctx context.Context, ev billingevent.Event, log *slog.Logger) error {
	s := ev.Checkout
	if s == nil {
		return models.ValidationFailed("checkout payload is missing")
	}
	ref := models.AccountRef{
		IdentityID: s.IdentityID(),
		Email:      models.NormalizeEmail(s.Email()),
		CustomerID: s.Customer,
	}
	log = log.With(slog.String("session_id", s.ID))

	if _, err := r.resolveAccount(ctx, ref, log); err != nil {
		return err
	}
	if s.Subscription == "" {
		log.Info("checkout completed without subscription")
		return nil
	}

	sub, err := r.fetcher.GetSubscription(ctx, s.Subscription)
	if err != nil {
		log.Error("failed to fetch subscription", slog.String("subscription_id", s.Subscription),
			sl.Upstream(err), sl.Err(err))
		return err
	}
	if sub.Customer == "" {
		sub.Customer = s.Customer
	}
	if id := sub.IdentityID(); id != "" && ref.IdentityID == "" {
		ref.IdentityID = id
	}
	if sub.Customer != "" {
		ref.CustomerID = sub.Customer
	}
	// Подписка прочитана из API сейчас, её состояние новее самого события.
	return r.applySubscription(ctx, billingevent.KindSubscriptionUpdated, sub, ref, r.now().UTC(), log)
}

func (r *Reconciler) applySubscription(ctx context.Context, kind billingevent.Kind, sub *billingevent.Subscription,
	ref models.AccountRef, eventAt time.Time, log *slog.Logger) error {
	log = log.With(slog.String("subscription_id", sub.ID))

	acct, err := r.resolveAccount(ctx, ref, log)
	if err != nil {
		return err
	}

	status := models.SubscriptionStatus(sub.Status)
	if kind == billingevent.KindSubscriptionDeleted && status == "" {
		status = models.StatusCanceled
	}
	if !status.Valid() {
		log.Warn("unknown subscription status", slog.String("status", sub.Status))
	}
	plan := sub.FirstPriceID()
	if plan == "" {
		plan = unknownPlan
	}

	row := models.Subscription{
		SubscriptionID:    sub.ID,
		BillingCustomerID: ref.CustomerID,
		PlanID:            plan,
		Status:            status,
		PeriodEnd:         sub.PeriodEnd(),
		EventAt:           eventAt,
	}
	if acct != nil {
		row.AccountID = acct.ID
	}

	res, err := r.subs.UpsertSubscription(ctx, row)
	if err != nil {
		return err
	}
	metrics.ReconcileOutcomes.WithLabelValues(string(res.Outcome)).Inc()
	log.Info("subscription reconciled",
		slog.String("outcome", string(res.Outcome)),
		slog.String("status", string(res.Subscription.Status)),
		slog.Bool("linked", res.Subscription.AccountID != ""))

	if res.StatusChanged() {
		r.notify(ctx, acct, res.Subscription, log)
	}
	return nil
}

// resolveAccount находит или создаёт аккаунт по ключам события.
// Возвращает nil без ошибки, если связь пока не может быть установлена.
func (r *Reconciler) resolveAccount(ctx context.Context, ref models.AccountRef, log *slog.Logger) (*models.Account, error) {
	if ref.Empty() {
		return nil, nil
	}

	acct, err := r.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}

	if acct == nil {
		// По одному billingCustomerId аккаунт не создаётся: связь появится,
		// когда придёт событие с личностью или адресом.
		if ref.IdentityID == "" && ref.Email == "" {
			log.Info("account link left unresolved", slog.String("customer_id", ref.CustomerID))
			return nil, nil
		}
		acct, err = r.accounts.CreateAccount(ctx, ref)
		if err != nil {
			return nil, err
		}
		log.Info("account created", slog.String("account_id", acct.ID))
	}

	if ref.IdentityID != "" && acct.ExternalIdentityID != ref.IdentityID {
		if acct.ExternalIdentityID == "" {
			attached, err := r.accounts.AttachIdentity(ctx, acct.ID, ref.IdentityID)
			if err != nil {
				return nil, err
			}
			if attached {
				acct.ExternalIdentityID = ref.IdentityID
			}
		} else {
			log.Warn("account already linked to another identity",
				slog.String("account_id", acct.ID),
				slog.String("identity", ref.IdentityID))
		}
	}

	if ref.CustomerID != "" && acct.BillingCustomerID != ref.CustomerID {
		if acct.BillingCustomerID == "" {
			set, err := r.accounts.SetBillingCustomerIfEmpty(ctx, acct.ID, ref.CustomerID)
			if err != nil {
				return nil, err
			}
			if set {
				acct.BillingCustomerID = ref.CustomerID
			} else {
				log.Warn("billing customer already set concurrently", slog.String("account_id", acct.ID))
			}
		} else {
			log.Warn("billing customer conflict, keeping existing",
				slog.String("account_id", acct.ID),
				slog.String("existing", acct.BillingCustomerID),
				slog.String("incoming", ref.CustomerID))
		}
	}
	return acct, nil
}

// lookup ищет аккаунт по личности, затем по billingCustomerId, затем по email.
func (r *Reconciler) lookup(ctx context.Context, ref models.AccountRef) (*models.Account, error) {
	steps := []struct {
		key  string
		find func(context.Context, string) (*models.Account, error)
	}{
		{ref.IdentityID, r.accounts.GetAccountByIdentity},
		{ref.CustomerID, r.accounts.GetAccountByCustomerID},
		{ref.Email, r.accounts.GetAccountByEmail},
	}
	for _, s := range steps {
		if s.key == "" {
			continue
		}
		acct, err := s.find(ctx, s.key)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return acct, nil
	}
	return nil, nil
}

func (r *Reconciler) notify(ctx context.Context, acct *models.Account, sub models.Subscription, log *slog.Logger) {
	if r.notices == nil || acct == nil || acct.Email == "" {
		return
	}
	notice := models.BillingNotice{
		Email:          acct.Email,
		SubscriptionID: sub.SubscriptionID,
		Status:         sub.Status,
		PeriodEnd:      sub.PeriodEnd,
	}
	if err := r.notices.PublishBillingNotice(ctx, notice); err != nil {
		log.Warn("failed to publish billing notice", sl.Err(err))
	}
}
