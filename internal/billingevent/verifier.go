package billingevent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

// Verifier проверяет подпись Stripe и разбирает событие.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

// NewVerifier создает верификатор с секретом вебхука.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: strings.TrimSpace(secret), tolerance: webhook.DefaultTolerance}
}

// Verify проверяет заголовок Stripe-Signature и возвращает проверенное событие.
// Неизвестные типы событий возвращаются с KindIgnored без ошибки.
func (v *Verifier) Verify(payload []byte, sigHeader string) (Event, error) {
	const op = "billingevent.Verify"

	if v.secret == "" {
		return Event{}, fmt.Errorf("%s: %w", op, models.ConfigurationMissing("stripe webhook secret"))
	}
	if strings.TrimSpace(sigHeader) == "" {
		return Event{}, fmt.Errorf("%s: %w: missing Stripe-Signature header", op, models.ErrSignatureInvalid)
	}

	raw, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("%s: %w: %v", op, models.ErrSignatureInvalid, err)
	}

	ev := Event{
		ID:       raw.ID,
		Type:     string(raw.Type),
		Kind:     kindOf(string(raw.Type)),
		Created:  time.Unix(raw.Created, 0).UTC(),
		verified: true,
	}

	var data []byte
	if raw.Data != nil {
		data = raw.Data.Raw
	}

	switch ev.Kind {
	case KindCheckoutCompleted:
		var s CheckoutSession
		if err := json.Unmarshal(data, &s); err != nil {
			return Event{}, fmt.Errorf("%s: %w", op, models.ValidationFailed("decode checkout session: "+err.Error()))
		}
		ev.Checkout = &s
	case KindSubscriptionCreated, KindSubscriptionUpdated, KindSubscriptionDeleted:
		var s Subscription
		if err := json.Unmarshal(data, &s); err != nil {
			return Event{}, fmt.Errorf("%s: %w", op, models.ValidationFailed("decode subscription: "+err.Error()))
		}
		if s.ID == "" {
			return Event{}, fmt.Errorf("%s: %w", op, models.ValidationFailed("subscription id is empty"))
		}
		ev.Subscription = &s
	case KindIgnored:
	}
	return ev, nil
}
