package order

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"velora_back_end/internal/models"
	"velora_back_end/internal/search"
	"velora_back_end/internal/store"
	"velora_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// Tolérance d'arrondi sur la validation du montant (un centime)
const amountTolerance = 0.01

type placeRequest struct {
	Items   []models.OrderItem `json:"items" binding:"required"`
	Amount  float64            `json:"amount" binding:"required"`
	Address models.Address     `json:"address"`
}

// validate recalcule le total côté serveur : somme des articles plus
// frais de livraison. Un montant client divergent est rejeté.
func (h *Handler) validate(req placeRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("panier vide")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("quantité invalide pour %s", item.Name)
		}
		if item.Price <= 0 {
			return fmt.Errorf("prix invalide pour %s", item.Name)
		}
	}
	if req.Amount <= 0 {
		return fmt.Errorf("montant invalide")
	}

	expected := models.Order{Items: req.Items}.ItemsTotal() + h.DeliveryFee
	if math.Abs(req.Amount-expected) > amountTolerance {
		return fmt.Errorf("montant incohérent: reçu %.2f, attendu %.2f", req.Amount, expected)
	}
	return nil
}

// place persiste la commande en état non payé puis initie le flux de
// paiement. La ligne est écrite avant tout appel externe : un échec
// prestataire laisse une commande non payée visible, jamais une perte.
func (h *Handler) place(c *gin.Context, method models.PaymentMethod) (*models.Order, string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return nil, "", false
	}

	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return nil, "", false
	}
	if err := h.validate(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, "", false
	}

	gw, ok := h.Gateways[method]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Méthode de paiement indisponible"})
		return nil, "", false
	}

	o := &models.Order{
		ID:            store.NewOrderID(),
		UserID:        userID,
		Items:         req.Items,
		Address:       req.Address,
		Amount:        req.Amount,
		PaymentMethod: method,
		Payment:       false,
		Status:        models.StatusOrderPlaced,
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.Orders.Insert(c.Request.Context(), o); err != nil {
		log.Printf("❌ Erreur insertion commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		return nil, "", false
	}

	cont, err := gw.Begin(c.Request.Context(), o)
	if err != nil {
		log.Printf("❌ Erreur prestataire %s pour commande %s: %v", method, o.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création paiement"})
		return nil, "", false
	}

	// Cas PayPal : l'id de commande prestataire est persisté avant
	// de retourner le lien d'approbation
	if cont.ProviderOrderID != "" {
		o.ProviderRefs.PayPalOrderID = cont.ProviderOrderID
		if err := h.Orders.SetPayPalOrderID(c.Request.Context(), o.ID, cont.ProviderOrderID); err != nil {
			log.Printf("❌ Erreur persistance id PayPal pour %s: %v", o.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création paiement"})
			return nil, "", false
		}
	}

	search.IndexOrder(*o)
	log.Printf("🛒 Commande %s créée (%s, %s)", o.ID, method, utils.FormatAmount(o.Amount))

	return o, cont.RedirectURL, true
}

// PlaceCOD enregistre une commande à régler à la livraison.
// Le panier est vidé dès le placement (convention uniforme), et un
// e-mail de confirmation avec QR de règlement part en best-effort.
func (h *Handler) PlaceCOD(c *gin.Context) {
	o, _, ok := h.place(c, models.PaymentCOD)
	if !ok {
		return
	}

	if err := h.Carts.Clear(c.Request.Context(), o.UserID); err != nil {
		log.Printf("⚠️ Erreur vidage panier pour %s: %v", o.UserID, err)
	}

	h.sendConfirmationEmail(*o)

	c.JSON(http.StatusOK, gin.H{"success": true, "orderId": o.ID})
}

// PlaceStripe crée la commande puis une session Checkout hébergée
func (h *Handler) PlaceStripe(c *gin.Context) {
	_, redirectURL, ok := h.place(c, models.PaymentStripe)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session_url": redirectURL})
}

// PlacePayPal crée la commande puis retourne le lien d'approbation PayPal
func (h *Handler) PlacePayPal(c *gin.Context) {
	_, redirectURL, ok := h.place(c, models.PaymentPayPal)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "approval_url": redirectURL})
}
