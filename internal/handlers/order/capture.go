package order

import (
	"errors"
	"log"
	"net/http"

	"velora_back_end/internal/models"
	"velora_back_end/internal/store"

	"github.com/gin-gonic/gin"
)

type captureRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// CapturePayPal finalise un paiement PayPal après le retour d'approbation.
// Une capture non COMPLETED est un 400 sans mutation de la commande.
func (h *Handler) CapturePayPal(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var req captureRequest
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
	if o.PaymentMethod != models.PaymentPayPal {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cette commande n'est pas une commande PayPal"})
		return
	}
	if o.ProviderRefs.PayPalOrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune commande PayPal associée"})
		return
	}
	if o.Payment {
		// Capture redondante, idempotent
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Commande déjà payée"})
		return
	}
	if h.Capturer == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PayPal indisponible"})
		return
	}

	result, err := h.Capturer.Capture(c.Request.Context(), o.ProviderRefs.PayPalOrderID)
	if err != nil {
		log.Printf("❌ Erreur capture PayPal pour %s: %v", o.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur capture paiement"})
		return
	}

	if !result.Completed {
		log.Printf("⚠️ Capture PayPal non aboutie pour %s: %s", o.ID, result.Status)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "status": result.Status})
		return
	}

	o.ProviderRefs.PayPalPayerID = result.PayerID
	o.ProviderRefs.PayPalCaptureID = result.CaptureID
	if err := h.Orders.SetPayPalCapture(c.Request.Context(), o.ID, result.PayerID, result.CaptureID); err != nil {
		log.Printf("⚠️ Erreur persistance capture PayPal pour %s: %v", o.ID, err)
	}

	if _, err := h.confirmPaid(c.Request.Context(), o); err != nil {
		log.Printf("❌ Erreur confirmation commande %s: %v", o.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur confirmation paiement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Paiement capturé"})
}
