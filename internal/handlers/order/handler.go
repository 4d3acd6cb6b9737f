// Package order implémente le cycle de vie des commandes : placement via
// les trois méthodes de paiement, réconciliation des confirmations
// (webhook Stripe, verify client, capture PayPal) et transitions de statut.
package order

import (
	"context"
	"time"

	"velora_back_end/internal/config"
	"velora_back_end/internal/gateway"
	"velora_back_end/internal/models"
	"velora_back_end/internal/services"
	"velora_back_end/internal/store"
)

// Mailer envoie les e-mails transactionnels (best-effort partout)
type Mailer interface {
	Send(to, subject, html string) error
}

// Invoices archive les factures HTML et signe leurs liens de téléchargement
type Invoices interface {
	Store(ctx context.Context, orderID, html string) error
	URL(ctx context.Context, orderID string, duration time.Duration) (string, error)
}

// Handler porte les dépendances des endpoints commande
type Handler struct {
	Orders      store.OrderStore
	Carts       store.CartStore
	Users       store.UserStore
	Gateways    map[models.PaymentMethod]gateway.Gateway
	Capturer    gateway.Capturer
	Mailer      Mailer
	Invoices    Invoices
	DeliveryFee float64
}

// NewHandler câble le handler sur les implémentations de production
func NewHandler(paypalGw *gateway.PayPalGateway, mailer Mailer) *Handler {
	gateways := map[models.PaymentMethod]gateway.Gateway{
		models.PaymentCOD:    gateway.NewCODGateway(),
		models.PaymentStripe: gateway.NewStripeGateway(),
	}
	var capturer gateway.Capturer
	if paypalGw != nil {
		gateways[models.PaymentPayPal] = paypalGw
		capturer = paypalGw
	}

	return &Handler{
		Orders:      store.NewScyllaOrderStore(),
		Carts:       store.NewRedisCartStore(),
		Users:       store.NewScyllaUserStore(),
		Gateways:    gateways,
		Capturer:    capturer,
		Mailer:      mailer,
		Invoices:    services.NewMinIOInvoiceStore(),
		DeliveryFee: config.DeliveryFee(),
	}
}
