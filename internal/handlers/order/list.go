package order

import (
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"velora_back_end/internal/models"
	"velora_back_end/internal/store"

	"github.com/gin-gonic/gin"
)

// UserOrders retourne les commandes de l'utilisateur connecté, les plus
// récentes en premier
func (h *Handler) UserOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	orders, err := h.Orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Printf("❌ Erreur lecture commandes de %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// adminOrderRow joint les informations utilisateur à la commande
type adminOrderRow struct {
	models.Order
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// AllOrders retourne toutes les commandes avec nom/email du client (admin)
func (h *Handler) AllOrders(c *gin.Context) {
	orders, err := h.Orders.ListAll(c.Request.Context())
	if err != nil {
		log.Printf("❌ Erreur lecture commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	rows := make([]adminOrderRow, 0, len(orders))
	for _, o := range orders {
		row := adminOrderRow{Order: o}
		if u, err := h.Users.GetByID(c.Request.Context(), o.UserID); err == nil {
			row.UserName = u.Name
			row.UserEmail = u.Email
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, gin.H{"orders": rows})
}

// InvoiceURL retourne une URL signée vers la facture d'une commande payée
func (h *Handler) InvoiceURL(c *gin.Context) {
	userID := c.GetString("user_id")
	orderID := c.Param("id")

	o, err := h.Orders.GetByID(c.Request.Context(), orderID)
	if errors.Is(err, store.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}

	role, _ := c.Get("role")
	if o.UserID != userID && role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}
	if !o.Payment {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Facture disponible après paiement"})
		return
	}

	if h.Invoices == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération lien facture"})
		return
	}

	url, err := h.Invoices.URL(c.Request.Context(), o.ID, 15*time.Minute)
	if err != nil {
		log.Printf("❌ Erreur URL facture pour %s: %v", o.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération lien facture"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
