package gateway

import (
	"context"
	"fmt"
	"log"

	"velora_back_end/internal/config"
	"velora_back_end/internal/models"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
)

// StripeGateway crée une Checkout Session hébergée. Le client est
// redirigé vers /verify avec un flag success interprété côté frontend
// avant l'appel au endpoint de vérification ; la corrélation webhook
// passe par metadata.orderId / metadata.userId.
type StripeGateway struct {
	Currency    string
	DeliveryFee float64
	FrontendURL string
}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{
		Currency:    config.Currency(),
		DeliveryFee: config.DeliveryFee(),
		FrontendURL: config.FrontendURL(),
	}
}

func (g *StripeGateway) Method() models.PaymentMethod {
	return models.PaymentStripe
}

// buildLineItems construit une ligne par article plus la ligne
// forfaitaire de frais de livraison
func (g *StripeGateway) buildLineItems(items []models.OrderItem) []*stripe.CheckoutSessionLineItemParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items)+1)
	for _, item := range items {
		name := item.Name
		if item.Size != "" {
			name = fmt.Sprintf("%s (%s)", item.Name, item.Size)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(name),
				},
				UnitAmount: stripe.Int64(toMinorUnits(item.Price)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(g.Currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String("Frais de livraison"),
			},
			UnitAmount: stripe.Int64(toMinorUnits(g.DeliveryFee)),
		},
		Quantity: stripe.Int64(1),
	})

	return lineItems
}

func (g *StripeGateway) Begin(ctx context.Context, o *models.Order) (Continuation, error) {
	successURL := fmt.Sprintf("%s/verify?success=true&orderId=%s&method=stripe", g.FrontendURL, o.ID)
	cancelURL := fmt.Sprintf("%s/verify?success=false&orderId=%s&method=stripe", g.FrontendURL, o.ID)

	params := &stripe.CheckoutSessionParams{
		LineItems:  g.buildLineItems(o.Items),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx
	params.AddMetadata("orderId", o.ID)
	params.AddMetadata("userId", o.UserID)

	s, err := session.New(params)
	if err != nil {
		return Continuation{}, err
	}

	log.Printf("💳 Session Checkout créée : %s pour commande %s", s.ID, o.ID)

	return Continuation{OrderID: o.ID, RedirectURL: s.URL}, nil
}
