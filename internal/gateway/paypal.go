package gateway

import (
	"context"
	"fmt"
	"log"
	"os"

	"velora_back_end/internal/config"
	"velora_back_end/internal/models"

	"github.com/plutov/paypal/v4"
)

// PayPalGateway crée une commande PayPal puis la capture explicitement
// après approbation. PayPal facture dans la devise de règlement
// (PAYPAL_CURRENCY), distincte de la devise d'affichage de la boutique,
// sans conversion appliquée.
type PayPalGateway struct {
	client   *paypal.Client
	currency string
}

func NewPayPalGateway() (*PayPalGateway, error) {
	clientID := os.Getenv("PAYPAL_CLIENT_ID")
	secret := os.Getenv("PAYPAL_CLIENT_SECRET")
	if clientID == "" || secret == "" {
		return nil, fmt.Errorf("identifiants PayPal manquants")
	}

	apiBase := os.Getenv("PAYPAL_API_BASE")
	if apiBase == "" {
		apiBase = paypal.APIBaseSandBox
	}

	client, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, err
	}
	if _, err := client.GetAccessToken(context.Background()); err != nil {
		return nil, fmt.Errorf("authentification PayPal échouée: %v", err)
	}

	log.Println("✅ PayPal initialisé")
	return &PayPalGateway{client: client, currency: config.PayPalCurrency()}, nil
}

func (g *PayPalGateway) Method() models.PaymentMethod {
	return models.PaymentPayPal
}

// formatAmount met le montant au format décimal attendu par PayPal
func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// approvalLink extrait le lien d'approbation de la réponse prestataire
func approvalLink(links []paypal.Link) (string, error) {
	for _, link := range links {
		if link.Rel == "approve" {
			return link.Href, nil
		}
	}
	return "", ErrNoApprovalLink
}

func (g *PayPalGateway) Begin(ctx context.Context, o *models.Order) (Continuation, error) {
	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: o.ID,
			CustomID:    o.UserID,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: g.currency,
				Value:    formatAmount(o.Amount),
			},
		},
	}

	ppOrder, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return Continuation{}, err
	}

	approve, err := approvalLink(ppOrder.Links)
	if err != nil {
		return Continuation{}, err
	}

	log.Printf("💰 Commande PayPal créée : %s pour commande %s", ppOrder.ID, o.ID)

	return Continuation{
		OrderID:         o.ID,
		RedirectURL:     approve,
		ProviderOrderID: ppOrder.ID,
	}, nil
}

// Capture finalise le paiement PayPal ; un statut autre que COMPLETED
// est remonté sans mutation de la commande.
func (g *PayPalGateway) Capture(ctx context.Context, providerOrderID string) (CaptureResult, error) {
	resp, err := g.client.CaptureOrder(ctx, providerOrderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return CaptureResult{}, err
	}

	result := CaptureResult{
		Status:    resp.Status,
		Completed: resp.Status == "COMPLETED",
	}
	if resp.Payer != nil {
		result.PayerID = resp.Payer.PayerID
	}
	for _, unit := range resp.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, capture := range unit.Payments.Captures {
			result.CaptureID = capture.ID
			break
		}
	}

	return result, nil
}
