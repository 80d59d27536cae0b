package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/mentor-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
	"github.com/magabrotheeeer/mentor-gateway/internal/paymentprovider"
)

// CheckoutConfig: настройки оформления подписки.
type CheckoutConfig struct {
	PriceID string
	AppURL  string
}

// CheckoutService создаёт сессии Stripe для оформления и управления подпиской.
type CheckoutService struct {
	provider Provider
	accounts AccountStore
	linker   *Linker
	cfg      CheckoutConfig
	log      *slog.Logger
}

// NewCheckoutService создает новый экземпляр CheckoutService.
func NewCheckoutService(provider Provider, accounts AccountStore, cfg CheckoutConfig, log *slog.Logger) *CheckoutService {
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	return &CheckoutService{
		provider: provider,
		accounts: accounts,
		linker:   NewLinker(accounts, log),
		cfg:      cfg,
		log:      log,
	}
}

// CreateCheckout возвращает URL checkout-сессии. Для вошедшего пользователя
// сессия привязывается к его клиенту Stripe, который создаётся при необходимости.
func (s *CheckoutService) CreateCheckout(ctx context.Context, identityID, email string) (string, error) {
	const op = "billing.CreateCheckout"

	if err := s.checkConfig(true); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	params := paymentprovider.CheckoutParams{
		PriceID:    s.cfg.PriceID,
		Email:      models.NormalizeEmail(email),
		IdentityID: identityID,
		SuccessURL: s.cfg.AppURL + "/welcome?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.cfg.AppURL + "/subscribe?canceled=1",
	}
	if identityID != "" {
		customerID, err := s.ensureCustomer(ctx, identityID, params.Email)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		params.CustomerID = customerID
	}

	url, err := s.provider.CreateCheckoutSession(ctx, params)
	if err != nil {
		s.log.Error("failed to create checkout session", sl.Op(op), sl.Upstream(err), sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}

// CreatePortal возвращает URL портала управления подпиской для вошедшего пользователя.
func (s *CheckoutService) CreatePortal(ctx context.Context, identityID, email string) (string, error) {
	const op = "billing.CreatePortal"

	if identityID == "" {
		return "", fmt.Errorf("%s: %w", op, models.ErrAuthRequired)
	}
	if err := s.checkConfig(false); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	customerID, err := s.ensureCustomer(ctx, identityID, models.NormalizeEmail(email))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	url, err := s.provider.CreatePortalSession(ctx, customerID, s.cfg.AppURL+"/chat")
	if err != nil {
		s.log.Error("failed to create portal session", sl.Op(op), sl.Upstream(err), sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}

// SessionSummary возвращает сведения о checkout-сессии.
func (s *CheckoutService) SessionSummary(ctx context.Context, sessionID string) (*paymentprovider.SessionSummary, error) {
	const op = "billing.SessionSummary"

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ValidationFailed("session_id is required"))
	}
	if !s.provider.Configured() {
		return nil, fmt.Errorf("%s: %w", op, models.ConfigurationMissing("stripe secret key"))
	}
	summary, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return summary, nil
}

// ensureCustomer возвращает клиента Stripe для личности. Аккаунт, созданный
// оплатой до входа, находится по email. Сохранённое значение используется без
// обращения к Stripe; новый клиент записывается локально сразу после создания,
// при гонке побеждает первый записавший.
func (s *CheckoutService) ensureCustomer(ctx context.Context, identityID, email string) (string, error) {
	acct, _, err := s.linker.LinkIdentity(ctx, identityID, email)
	if err != nil {
		return "", err
	}
	if acct != nil && acct.BillingCustomerID != "" {
		return acct.BillingCustomerID, nil
	}
	if acct == nil {
		acct, err = s.accounts.CreateAccount(ctx, models.AccountRef{IdentityID: identityID, Email: email})
		if err != nil {
			return "", err
		}
		if acct.BillingCustomerID != "" {
			return acct.BillingCustomerID, nil
		}
	}

	customerID, err := s.provider.CreateCustomer(ctx, email, identityID)
	if err != nil {
		return "", err
	}
	set, err := s.accounts.SetBillingCustomerIfEmpty(ctx, acct.ID, customerID)
	if err != nil {
		return "", err
	}
	if set {
		s.log.Info("billing customer linked", slog.String("account_id", acct.ID), slog.String("customer_id", customerID))
		return customerID, nil
	}

	stored, err := s.accounts.GetAccountByIdentity(ctx, identityID)
	if err != nil {
		return "", err
	}
	s.log.Warn("billing customer created concurrently, using stored one",
		slog.String("account_id", stored.ID),
		slog.String("discarded", customerID))
	return stored.BillingCustomerID, nil
}

func (s *CheckoutService) checkConfig(needPrice bool) error {
	if !s.provider.Configured() {
		return models.ConfigurationMissing("stripe secret key")
	}
	if needPrice && s.cfg.PriceID == "" {
		return models.ConfigurationMissing("stripe price id")
	}
	if !strings.HasPrefix(s.cfg.AppURL, "http") {
		return models.ConfigurationMissing("app url")
	}
	return nil
}
