package billingevent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

const testSecret = "whsec_test"

func sign(t *testing.T, payload string, secret string) ([]byte, string) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return signed.Payload, signed.Header
}

func TestVerifier_Verify_Checkout(t *testing.T) {
	payload := `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {"object": {
			"id": "cs_1",
			"mode": "subscription",
			"customer": "cus_A",
			"subscription": "sub_1",
			"client_reference_id": "user_42",
			"customer_details": {"email": "ann@example.com"}
		}}
	}`
	body, header := sign(t, payload, testSecret)

	ev, err := NewVerifier(testSecret).Verify(body, header)

	require.NoError(t, err)
	assert.True(t, ev.Verified())
	assert.Equal(t, KindCheckoutCompleted, ev.Kind)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), ev.Created)
	require.NotNil(t, ev.Checkout)
	assert.Equal(t, "user_42", ev.Checkout.IdentityID())
	assert.Equal(t, "ann@example.com", ev.Checkout.Email())
	assert.Equal(t, "sub_1", ev.Checkout.Subscription)
	assert.Nil(t, ev.Subscription)
}

func TestVerifier_Verify_Subscription(t *testing.T) {
	payload := `{
		"id": "evt_2",
		"object": "event",
		"type": "customer.subscription.updated",
		"created": 1700000100,
		"data": {"object": {
			"id": "sub_1",
			"customer": "cus_A",
			"status": "past_due",
			"metadata": {"clerkUserId": "user_42"},
			"items": {"data": [{"current_period_end": 1702592000, "price": {"id": "price_monthly"}}]}
		}}
	}`
	body, header := sign(t, payload, testSecret)

	ev, err := NewVerifier(testSecret).Verify(body, header)

	require.NoError(t, err)
	assert.Equal(t, KindSubscriptionUpdated, ev.Kind)
	require.NotNil(t, ev.Subscription)
	assert.Equal(t, "past_due", ev.Subscription.Status)
	assert.Equal(t, "price_monthly", ev.Subscription.FirstPriceID())
	assert.Equal(t, time.Unix(1702592000, 0).UTC(), ev.Subscription.PeriodEnd())
	assert.Equal(t, "user_42", ev.Subscription.IdentityID())
}

func TestVerifier_Verify_UnknownTypeIgnored(t *testing.T) {
	body, header := sign(t, `{"id":"evt_3","object":"event","type":"invoice.paid","data":{"object":{}}}`, testSecret)

	ev, err := NewVerifier(testSecret).Verify(body, header)

	require.NoError(t, err)
	assert.Equal(t, KindIgnored, ev.Kind)
	assert.True(t, ev.Verified())
}

func TestVerifier_Verify_Rejects(t *testing.T) {
	payload := `{"id":"evt_4","object":"event","type":"customer.subscription.deleted","data":{"object":{"id":"sub_1"}}}`

	t.Run("wrong secret", func(t *testing.T) {
		body, header := sign(t, payload, "whsec_other")
		_, err := NewVerifier(testSecret).Verify(body, header)
		assert.ErrorIs(t, err, models.ErrSignatureInvalid)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := NewVerifier(testSecret).Verify([]byte(payload), "")
		assert.ErrorIs(t, err, models.ErrSignatureInvalid)
	})

	t.Run("tampered body", func(t *testing.T) {
		_, header := sign(t, payload, testSecret)
		_, err := NewVerifier(testSecret).Verify([]byte(payload+" "), header)
		assert.ErrorIs(t, err, models.ErrSignatureInvalid)
	})

	t.Run("no secret configured", func(t *testing.T) {
		body, header := sign(t, payload, testSecret)
		_, err := NewVerifier("").Verify(body, header)
		assert.ErrorIs(t, err, models.ErrConfiguration)
	})

	t.Run("subscription without id", func(t *testing.T) {
		body, header := sign(t, `{"id":"evt_5","object":"event","type":"customer.subscription.created","data":{"object":{"status":"active"}}}`, testSecret)
		_, err := NewVerifier(testSecret).Verify(body, header)
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestEvent_ZeroValueNotVerified(t *testing.T) {
	assert.False(t, Event{Kind: KindSubscriptionUpdated}.Verified())
}

func TestSubscription_PeriodEndLegacyField(t *testing.T) {
	s := Subscription{CurrentPeriodEnd: 1700000000}
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), s.PeriodEnd())
	assert.True(t, (&Subscription{}).PeriodEnd().IsZero())
}
