package billing

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrDisabled is returned by the Disabled verifier for every call.
var ErrDisabled = errors.New("billing: verifier disabled (no secret key configured)")

// Subscription is the slice of billing state provisioning cares about.
type Subscription struct {
	ID         string
	CustomerID string
	Status     string
	Active     bool
	PriceID    string
}

// Verifier checks payment status with the billing platform before a client
// is provisioned.
type Verifier interface {
	VerifySubscription(ctx context.Context, subscriptionID string) (Subscription, error)
}

// StripeVerifier looks subscriptions up via the Stripe API.
type StripeVerifier struct {
	api *client.API
}

var _ Verifier = (*StripeVerifier)(nil)

func NewStripeVerifier(secretKey string) *StripeVerifier {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeVerifier{api: api}
}

func (s *StripeVerifier) VerifySubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	params := &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}}
	sub, err := s.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return Subscription{}, err
	}

	out := Subscription{
		ID:     sub.ID,
		Status: string(sub.Status),
		Active: sub.Status == stripe.SubscriptionStatusActive ||
			sub.Status == stripe.SubscriptionStatusTrialing,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.PriceID = sub.Items.Data[0].Price.ID
	}
	return out, nil
}

// Disabled is the null Verifier selected when STRIPE_SECRET_KEY is unset.
type Disabled struct{}

var _ Verifier = Disabled{}

func (Disabled) VerifySubscription(context.Context, string) (Subscription, error) {
	return Subscription{}, ErrDisabled
}
