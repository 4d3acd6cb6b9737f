package user

import (
	"log"
	"net/http"

	"velora_back_end/internal/models"
	"velora_back_end/internal/store"

	"github.com/gin-gonic/gin"
)

var carts store.CartStore = store.NewRedisCartStore()

// GetCart retourne le panier de l'utilisateur connecté
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	cart, err := carts.Get(c.Request.Context(), userID)
	if err != nil {
		log.Printf("❌ Erreur lecture panier %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cartData": cart, "count": cart.Count()})
}

// AddToCart ajoute une quantité d'un produit (taille optionnelle) au panier
func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Size      string `json:"size"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}
	if input.Size == "" {
		input.Size = "default"
	}

	cart, err := carts.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	cart.Add(input.ProductID, input.Size, input.Quantity)

	if err := carts.Save(c.Request.Context(), userID, cart); err != nil {
		log.Printf("❌ Erreur sauvegarde panier %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	log.Printf("🛒 Produit %s (x%d) ajouté au panier de %s", input.ProductID, input.Quantity, userID)
	c.JSON(http.StatusOK, gin.H{"success": true, "cartData": cart})
}

// UpdateCart fixe la quantité d'une ligne du panier (0 = suppression)
func UpdateCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Size      string `json:"size"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}
	if input.Size == "" {
		input.Size = "default"
	}

	cart, err := carts.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	cart.Set(input.ProductID, input.Size, input.Quantity)

	if cart.IsEmpty() {
		if err := carts.Clear(c.Request.Context(), userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
			return
		}
	} else if err := carts.Save(c.Request.Context(), userID, cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cartData": cart})
}

// ClearCart vide entièrement le panier
func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := carts.Clear(c.Request.Context(), userID); err != nil {
		log.Printf("❌ Erreur vidage panier %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vidage panier"})
		return
	}

	log.Printf("🛒 Panier de %s vidé", userID)
	c.JSON(http.StatusOK, gin.H{"success": true, "cartData": models.Cart{}})
}
