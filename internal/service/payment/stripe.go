package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
)

// StripeProvider creates hosted checkout sessions for deposit
// collection. The appointment and tenant ids travel as session
// metadata so the webhook can route the confirmation back.
type StripeProvider struct {
	secretKey  string
	successURL string
	cancelURL  string
}

func NewStripeProvider(secretKey, successURL, cancelURL string) *StripeProvider {
	return &StripeProvider{
		secretKey:  secretKey,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (p *StripeProvider) CreateSession(ctx context.Context, sp *SessionParams) (*Session, error) {
	stripe.Key = p.secretKey

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.successURL),
		CancelURL:         stripe.String(p.cancelURL),
		ClientReferenceID: stripe.String(sp.AppointmentID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(sp.Currency),
					UnitAmount: stripe.Int64(sp.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Sinal - %s", sp.ServiceName)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"appointment_id": sp.AppointmentID.String(),
			"org_id":         sp.OrgID.String(),
			"phone":          sp.CustomerPhone,
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"appointment_id": sp.AppointmentID.String(),
				"org_id":         sp.OrgID.String(),
			},
		},
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe session create: %w", err)
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}
