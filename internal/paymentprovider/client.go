// Package paymentprovider: адаптер к API Stripe.
package paymentprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/magabrotheeeer/mentor-gateway/internal/billingevent"
	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

const providerName = "stripe"

// Client выполняет запросы к Stripe от имени сервиса.
type Client struct {
	api        *client.API
	configured bool
}

// NewClient создаёт клиент Stripe с секретным ключом.
func NewClient(secretKey string) *Client {
	return NewClientWithBackends(secretKey, nil)
}

// NewClientWithBackends позволяет подменить транспорт, например в тестах.
func NewClientWithBackends(secretKey string, backends *stripe.Backends) *Client {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &Client{api: api, configured: strings.TrimSpace(secretKey) != ""}
}

// Configured сообщает, задан ли секретный ключ.
func (c *Client) Configured() bool {
	return c.configured
}

// CreateCustomer создаёт клиента Stripe и сохраняет в metadata внешнюю личность.
func (c *Client) CreateCustomer(ctx context.Context, email, identityID string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if email != "" {
		params.Email = stripe.String(email)
	}
	if identityID != "" {
		params.AddMetadata("identity_id", identityID)
	}
	cust, err := c.api.Customers.New(params)
	if err != nil {
		return "", upstream("create customer", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession создаёт сессию оформления подписки и возвращает её URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		AllowPromotionCodes: stripe.Bool(true),
		SuccessURL:          stripe.String(p.SuccessURL),
		CancelURL:           stripe.String(p.CancelURL),
	}
	params.Context = ctx
	switch {
	case p.CustomerID != "":
		params.Customer = stripe.String(p.CustomerID)
	case p.Email != "":
		params.CustomerEmail = stripe.String(p.Email)
	}
	if p.IdentityID != "" {
		params.ClientReferenceID = stripe.String(p.IdentityID)
		params.AddMetadata("identity_id", p.IdentityID)
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"identity_id": p.IdentityID},
		}
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", upstream("create checkout session", err)
	}
	if sess.URL == "" {
		return "", &models.UpstreamError{Provider: providerName, Detail: "checkout session has no url"}
	}
	return sess.URL, nil
}

// CreatePortalSession создаёт сессию портала управления подпиской.
func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	sess, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", upstream("create portal session", err)
	}
	return sess.URL, nil
}

// GetCheckoutSession возвращает сводку по checkout-сессии.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*SessionSummary, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("customer")
	sess, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("checkout session %s: %w", sessionID, models.ErrNotFound)
		}
		return nil, upstream("get checkout session", err)
	}

	out := &SessionSummary{Status: string(sess.Status)}
	switch {
	case sess.CustomerDetails != nil && sess.CustomerDetails.Email != "":
		out.Email = sess.CustomerDetails.Email
	case sess.Customer != nil && !sess.Customer.Deleted:
		out.Email = sess.Customer.Email
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	return out, nil
}

// GetSubscription читает подписку напрямую из API.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*billingevent.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, upstream("get subscription", err)
	}
	return convertSubscription(sub), nil
}

func convertSubscription(sub *stripe.Subscription) *billingevent.Subscription {
	out := &billingevent.Subscription{
		ID:       sub.ID,
		Status:   string(sub.Status),
		Metadata: sub.Metadata,
	}
	if sub.Customer != nil {
		out.Customer = sub.Customer.ID
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item == nil {
				continue
			}
			var converted billingevent.SubscriptionItem
			converted.CurrentPeriodEnd = item.CurrentPeriodEnd
			if item.Price != nil {
				converted.Price.ID = item.Price.ID
			}
			out.Items.Data = append(out.Items.Data, converted)
		}
	}
	return out
}

func upstream(action string, err error) error {
	ue := &models.UpstreamError{Provider: providerName, Detail: action + ": " + err.Error(), Err: err}
	var se *stripe.Error
	if errors.As(err, &se) {
		ue.StatusCode = se.HTTPStatusCode
		ue.Detail = action + ": " + se.Msg
	}
	return ue
}
