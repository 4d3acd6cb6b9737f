package order

import (
	"errors"
	"log"
	"net/http"

	"velora_back_end/internal/models"
	"velora_back_end/internal/search"
	"velora_back_end/internal/store"
	"velora_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Reason  string `json:"reason"`
}

// UpdateOrderStatus applique un changement de statut admin, contraint
// par la table de transitions. Règle métier embarquée : livrer une
// commande COD impayée la marque aussi payée (règlement à la remise).
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	newStatus := models.OrderStatus(req.Status)
	if !models.ValidStatus(newStatus) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Statut invalide",
			"valid_statuses": []models.OrderStatus{
				models.StatusOrderPlaced, models.StatusPacking, models.StatusShipped,
				models.StatusOutForDelivery, models.StatusDelivered,
				models.StatusCancelled, models.StatusReturned,
			},
		})
		return
	}

	o, err := h.Orders.GetByID(c.Request.Context(), req.OrderID)
	if errors.Is(err, store.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur lecture commande %s: %v", req.OrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}

	if !models.CanTransition(o.Status, newStatus) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Transition de statut non autorisée",
			"from":  o.Status,
			"to":    newStatus,
		})
		return
	}

	if err := h.Orders.UpdateStatus(c.Request.Context(), o, newStatus, req.Reason); err != nil {
		log.Printf("❌ Erreur mise à jour statut %s: %v", o.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour commande"})
		return
	}

	// Livraison d'une commande COD impayée : règlement en espèces à la
	// remise, le flag payment suit atomiquement
	paymentUpdated := false
	if newStatus == models.StatusDelivered && o.PaymentMethod == models.PaymentCOD && !o.Payment {
		applied, err := h.Orders.MarkPaid(c.Request.Context(), o)
		if err != nil {
			log.Printf("❌ Erreur règlement COD pour %s: %v", o.ID, err)
		} else {
			paymentUpdated = applied
			if applied {
				o.Payment = true
				log.Printf("💵 Commande COD %s réglée à la livraison", o.ID)
			}
		}
	}

	o.Status = newStatus
	switch newStatus {
	case models.StatusCancelled:
		o.CancellationReason = req.Reason
	case models.StatusReturned:
		o.ReturnReason = req.Reason
	}

	// Règlement COD : la facture est archivée comme pour tout paiement
	if paymentUpdated {
		h.archiveInvoice(*o)
	}

	h.sendStatusEmail(*o, newStatus)
	search.IndexOrder(*o)

	log.Printf("📦 Commande %s : statut → %s", o.ID, newStatus)

	c.JSON(http.StatusOK, gin.H{"success": true, "paymentUpdated": paymentUpdated})
}

// sendStatusEmail notifie le client du changement de statut, best-effort
func (h *Handler) sendStatusEmail(o models.Order, newStatus models.OrderStatus) {
	if h.Mailer == nil || o.Address.Email == "" {
		return
	}

	html := utils.GenerateStatusUpdateHTML(o, newStatus)
	to := o.Address.Email

	go func() {
		if err := h.Mailer.Send(to, "Mise à jour de votre commande Velora", html); err != nil {
			log.Println("❌ Erreur envoi e-mail statut :", err)
		} else {
			log.Println("📧 E-mail de statut envoyé à", to)
		}
	}()
}
