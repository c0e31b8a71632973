package stripe

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	stripesdk "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/audionote/api/internal/config"
	"github.com/audionote/api/internal/domain"
)

// CheckoutSession is the subset of a payment checkout the API exposes.
type CheckoutSession struct {
	ID   string `json:"sessionId"`
	URL  string `json:"url"`
	Demo bool   `json:"demo,omitempty"`
}

// CheckoutCreator creates a hosted checkout page for a minute purchase.
type CheckoutCreator interface {
	Create(ctx context.Context, email, userID string, minutes float64, amountUSD int64) (*CheckoutSession, error)
}

type checkout struct {
	api    *client.API
	origin string
}

// NewCheckout builds a Stripe-backed checkout creator. Without a secret key
// it runs in demo mode: Create returns a stub session pointing back at the
// app instead of a Stripe-hosted page.
func NewCheckout(cfg *config.Config) CheckoutCreator {
	c := &checkout{origin: cfg.CheckoutOrigin}
	if cfg.StripeSecretKey != "" {
		c.api = &client.API{}
		c.api.Init(cfg.StripeSecretKey, nil)
	}
	return c
}

func (c *checkout) Create(ctx context.Context, email, userID string, minutes float64, amountUSD int64) (*CheckoutSession, error) {
	if c.api == nil {
		return c.demoSession(minutes, amountUSD), nil
	}

	params := &stripesdk.CheckoutSessionParams{
		Params:             stripesdk.Params{Context: ctx},
		PaymentMethodTypes: stripesdk.StringSlice([]string{"card"}),
		LineItems: []*stripesdk.CheckoutSessionLineItemParams{{
			PriceData: &stripesdk.CheckoutSessionLineItemPriceDataParams{
				Currency: stripesdk.String(string(stripesdk.CurrencyUSD)),
				ProductData: &stripesdk.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripesdk.String(fmt.Sprintf("AudioNote Conversion Time (%g minutes)", minutes)),
					Description: stripesdk.String(fmt.Sprintf("%g minutes of AI-powered voice-to-text conversion", minutes)),
				},
				UnitAmount: stripesdk.Int64(amountUSD * 100), // cents
			},
			Quantity: stripesdk.Int64(1),
		}},
		Mode:          stripesdk.String(string(stripesdk.CheckoutSessionModePayment)),
		SuccessURL:    stripesdk.String(c.origin + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripesdk.String(c.origin + "/"),
		CustomerEmail: stripesdk.String(email),
	}
	params.AddMetadata("user_email", email)
	params.AddMetadata("user_id", userID)
	params.AddMetadata("minutes", strconv.FormatFloat(minutes, 'g', -1, 64))
	params.AddMetadata("type", "time_purchase")

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %v: %w", err, domain.ErrUpstream)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (c *checkout) demoSession(minutes float64, amountUSD int64) *CheckoutSession {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return &CheckoutSession{
		ID:   fmt.Sprintf("cs_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(suffix)),
		URL:  fmt.Sprintf("%s/?demo_payment=true&minutes=%g&amount=%d", c.origin, minutes, amountUSD),
		Demo: true,
	}
}
