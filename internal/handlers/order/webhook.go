package order

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"velora_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

// StripeWebhook traite checkout.session.completed. Une fois la signature
// vérifiée, la réponse est toujours 200 : les erreurs internes sont
// journalisées et Stripe ne doit pas rejouer indéfiniment un événement
// que nous avons accepté.
func (h *Handler) StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Println("❌ JSON invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)
	h.handleStripeEvent(c, event)

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) handleStripeEvent(c *gin.Context, event stripe.Event) {
	if event.Type != "checkout.session.completed" {
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Println("❌ Erreur décodage session:", err)
		return
	}

	orderID := session.Metadata["orderId"]
	userID := session.Metadata["userId"]
	if orderID == "" || userID == "" {
		log.Println("⚠️ Métadonnées incomplètes")
		return
	}

	ctx := c.Request.Context()
	o, err := h.Orders.GetByID(ctx, orderID)
	if err == store.ErrOrderNotFound {
		log.Printf("⚠️ Commande %s introuvable pour le webhook", orderID)
		return
	}
	if err != nil {
		log.Printf("❌ Erreur lecture commande %s: %v", orderID, err)
		return
	}
	if o.UserID != userID {
		log.Printf("⚠️ Métadonnées incohérentes pour %s (user %s ≠ %s)", orderID, userID, o.UserID)
		return
	}

	if session.ID != "" && o.ProviderRefs.StripeSessionID == "" {
		o.ProviderRefs.StripeSessionID = session.ID
		if err := h.Orders.SetStripeSession(ctx, o.ID, session.ID); err != nil {
			log.Printf("⚠️ Erreur persistance session Stripe pour %s: %v", o.ID, err)
		}
	}

	if _, err := h.confirmPaid(ctx, o); err != nil {
		// La signature a été acceptée : on journalise sans renvoyer d'erreur
		log.Printf("❌ Erreur traitement webhook pour %s: %v", o.ID, err)
	}
}
