package gateway

import (
	"context"

	"velora_back_end/internal/models"
)

// CODGateway : paiement à la livraison, aucun appel externe.
// La commande est placée mais pas payée ; elle sera réglée au moment
// du passage en statut Delivered.
type CODGateway struct{}

func NewCODGateway() *CODGateway {
	return &CODGateway{}
}

func (g *CODGateway) Method() models.PaymentMethod {
	return models.PaymentCOD
}

func (g *CODGateway) Begin(_ context.Context, o *models.Order) (Continuation, error) {
	return Continuation{OrderID: o.ID}, nil
}
