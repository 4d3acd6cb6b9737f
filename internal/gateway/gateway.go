// Package gateway regroupe les stratégies de paiement derrière un contrat
// unique : chaque prestataire initie le flux et retourne une continuation
// (URL de redirection hébergée, ou confirmation immédiate pour le COD).
package gateway

import (
	"context"
	"errors"
	"math"

	"velora_back_end/internal/models"
)

// ErrNoApprovalLink signale une réponse prestataire sans lien d'approbation,
// ce qui est une erreur d'intégration fatale.
var ErrNoApprovalLink = errors.New("aucun lien d'approbation retourné par le prestataire")

// Continuation décrit la suite du flux après création de la commande
type Continuation struct {
	OrderID string
	// RedirectURL est l'URL de paiement hébergée ; vide pour le COD
	RedirectURL string
	// ProviderOrderID est l'identifiant de commande côté prestataire,
	// à persister avant de retourner la redirection (cas PayPal)
	ProviderOrderID string
}

// Gateway initie le flux de paiement d'une commande déjà persistée en
// état non payé. Une erreur prestataire laisse la ligne visible pour
// réconciliation manuelle.
type Gateway interface {
	Method() models.PaymentMethod
	Begin(ctx context.Context, o *models.Order) (Continuation, error)
}

// CaptureResult est le résultat normalisé d'une capture explicite
type CaptureResult struct {
	Completed bool
	Status    string
	PayerID   string
	CaptureID string
}

// Capturer finalise un paiement après approbation côté prestataire
type Capturer interface {
	Capture(ctx context.Context, providerOrderID string) (CaptureResult, error)
}

// toMinorUnits convertit un montant en centimes
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
