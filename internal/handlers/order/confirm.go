package order

import (
	"context"
	"log"

	"velora_back_end/internal/models"
	"velora_back_end/internal/search"
	"velora_back_end/internal/store"
	"velora_back_end/internal/utils"
)

// confirmPaid fait converger la commande vers l'état payé. Le passage
// payment false→true est un compare-and-set : quand plusieurs chemins de
// confirmation (webhook, verify, capture) arrivent en concurrence, un
// seul applique les effets de bord (panier, e-mail, facture). La
// condition du CAS porte aussi sur le statut : une annulation glissée
// entre la lecture et la confirmation est refusée côté base.
func (h *Handler) confirmPaid(ctx context.Context, o *models.Order) (bool, error) {
	if o.Status == models.StatusCancelled {
		return false, store.ErrOrderCancelled
	}

	applied, err := h.Orders.MarkPaid(ctx, o)
	if err != nil {
		return false, err
	}
	if !applied {
		// Déjà payée : confirmation redondante, rien à rejouer
		log.Printf("🔁 Commande %s déjà payée, confirmation ignorée", o.ID)
		return false, nil
	}

	o.Payment = true
	log.Printf("✅ Commande %s confirmée payée (%s)", o.ID, o.PaymentMethod)

	if err := h.Carts.Clear(ctx, o.UserID); err != nil {
		log.Printf("⚠️ Erreur vidage panier pour %s: %v", o.UserID, err)
	}

	h.sendConfirmationEmail(*o)
	h.archiveInvoice(*o)
	search.IndexOrder(*o)

	return true, nil
}

// sendConfirmationEmail part en goroutine : un échec SMTP ne remet
// jamais en cause la mutation de paiement.
func (h *Handler) sendConfirmationEmail(o models.Order) {
	if h.Mailer == nil || o.Address.Email == "" {
		return
	}

	qrBase64 := ""
	if o.PaymentMethod == models.PaymentCOD && !o.Payment {
		qr, err := utils.GenerateOrderSepaQR(o.ID, o.Amount)
		if err != nil {
			log.Printf("⚠️ Erreur génération QR pour %s: %v", o.ID, err)
		} else {
			qrBase64 = qr
		}
	}

	html := utils.GenerateOrderConfirmationHTML(o, qrBase64)
	to := o.Address.Email

	go func() {
		if err := h.Mailer.Send(to, "Confirmation de votre commande Velora", html); err != nil {
			log.Println("❌ Erreur envoi e-mail confirmation :", err)
		} else {
			log.Println("📧 E-mail de confirmation envoyé à", to)
		}
	}()
}

// archiveInvoice stocke la facture HTML, en best-effort : un échec
// d'archivage ne remet jamais en cause la mutation de paiement.
func (h *Handler) archiveInvoice(o models.Order) {
	if h.Invoices == nil {
		return
	}
	if err := h.Invoices.Store(context.Background(), o.ID, utils.GenerateInvoiceHTML(o)); err != nil {
		log.Printf("⚠️ Erreur archivage facture %s: %v", o.ID, err)
	}
}
