package order

import (
	"errors"
	"log"
	"net/http"

	"velora_back_end/internal/models"
	"velora_back_end/internal/search"
	"velora_back_end/internal/store"

	"github.com/gin-gonic/gin"
)

type verifyRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Success bool   `json:"success"`
	Method  string `json:"method"`
}

// Verify traite le retour client après un paiement hébergé.
// success=true (Stripe) confirme le paiement ; success=false annule la
// commande quel que soit le prestataire — elle est marquée Cancelled et
// conservée pour l'audit, jamais supprimée.
func (h *Handler) Verify(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
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
	if o.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	if !req.Success {
		h.cancelAbandoned(c, o)
		return
	}

	// Seul le flux Stripe passe par la vérification client côté succès ;
	// PayPal confirme via capture explicite, le COD ne se vérifie pas.
	if models.PaymentMethod(req.Method) != models.PaymentStripe || o.PaymentMethod != models.PaymentStripe {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Méthode de vérification invalide"})
		return
	}

	if _, err := h.confirmPaid(c.Request.Context(), o); err != nil {
		if errors.Is(err, store.ErrOrderCancelled) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Commande annulée"})
			return
		}
		log.Printf("❌ Erreur confirmation commande %s: %v", o.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur confirmation paiement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Paiement confirmé"})
}

// cancelAbandoned marque la commande Cancelled après un paiement abandonné
func (h *Handler) cancelAbandoned(c *gin.Context, o *models.Order) {
	if o.Payment {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Commande déjà payée"})
		return
	}
	if o.Status == models.StatusCancelled {
		// Annulation redondante, idempotent
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Commande déjà annulée"})
		return
	}

	reason := "Paiement abandonné par le client"
	if err := h.Orders.UpdateStatus(c.Request.Context(), o, models.StatusCancelled, reason); err != nil {
		log.Printf("❌ Erreur annulation commande %s: %v", o.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation commande"})
		return
	}

	o.Status = models.StatusCancelled
	o.CancellationReason = reason
	search.IndexOrder(*o)
	log.Printf("🚫 Commande %s annulée (paiement abandonné)", o.ID)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Commande annulée"})
}
