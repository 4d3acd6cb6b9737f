package order

import (
	"encoding/json"
	"net/http"
	"testing"

	"velora_back_end/internal/models"
)

func placeBody(t *testing.T, items []models.OrderItem, amount float64) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"items":  items,
		"amount": amount,
		"address": models.Address{
			FirstName: "Alice", LastName: "Dupont", Email: "alice@test.be",
			Street: "Rue du Test 1", City: "Bruxelles", PostalCode: "1000", Country: "Belgique",
		},
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return body
}

func TestPlaceCODCreatesUnpaidOrderAndClearsCart(t *testing.T) {
	h, orders, carts := newTestHandler()

	items := []models.OrderItem{
		{ProductID: "p1", Name: "T-shirt", Price: 25, Quantity: 2, Size: "M"},
		{ProductID: "p2", Name: "Casquette", Price: 15, Quantity: 1},
	}
	// 25×2 + 15 + 50 de livraison
	w := performRequest(t, http.MethodPost, "/orders/place", h.PlaceCOD, "user-1", placeBody(t, items, 115))
	checkStatus(t, w, http.StatusOK)

	var resp struct {
		Success bool   `json:"success"`
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("réponse illisible: %v", err)
	}
	if !resp.Success || resp.OrderID == "" {
		t.Fatalf("réponse inattendue: %s", w.Body.String())
	}

	o := orders.mustGet(t, resp.OrderID)
	if o.Payment {
		t.Error("une commande COD doit être créée non payée")
	}
	if o.Status != models.StatusOrderPlaced {
		t.Errorf("statut attendu %q, obtenu %q", models.StatusOrderPlaced, o.Status)
	}
	if o.PaymentMethod != models.PaymentCOD {
		t.Errorf("méthode attendue COD, obtenue %q", o.PaymentMethod)
	}
	if carts.clearCount("user-1") != 1 {
		t.Errorf("le panier doit être vidé au placement COD, vidages: %d", carts.clearCount("user-1"))
	}
}

func TestPlaceRejectsAmountMismatch(t *testing.T) {
	h, orders, _ := newTestHandler()

	items := []models.OrderItem{{ProductID: "p1", Name: "T-shirt", Price: 25, Quantity: 1}}
	// Total serveur : 25 + 50 = 75, le client envoie 10
	w := performRequest(t, http.MethodPost, "/orders/place", h.PlaceCOD, "user-1", placeBody(t, items, 10))
	checkStatus(t, w, http.StatusBadRequest)

	all, _ := orders.ListAll(t.Context())
	if len(all) != 0 {
		t.Errorf("aucune commande ne doit être créée, trouvé %d", len(all))
	}
}

func TestPlaceAcceptsRoundingTolerance(t *testing.T) {
	h, _, _ := newTestHandler()

	items := []models.OrderItem{{ProductID: "p1", Name: "Chaussettes", Price: 9.99, Quantity: 3}}
	// 29.97 + 50 = 79.97 ; un écart d'un centime passe
	w := performRequest(t, http.MethodPost, "/orders/place", h.PlaceCOD, "user-1", placeBody(t, items, 79.98))
	checkStatus(t, w, http.StatusOK)
}

func TestPlaceRejectsEmptyItems(t *testing.T) {
	h, _, _ := newTestHandler()

	w := performRequest(t, http.MethodPost, "/orders/place", h.PlaceCOD, "user-1", placeBody(t, []models.OrderItem{}, 50))
	checkStatus(t, w, http.StatusBadRequest)
}

func TestPlaceRejectsInvalidQuantityAndPrice(t *testing.T) {
	h, _, _ := newTestHandler()

	badQty := []models.OrderItem{{ProductID: "p1", Name: "T-shirt", Price: 25, Quantity: 0}}
	w := performRequest(t, http.MethodPost, "/orders/place", h.PlaceCOD, "user-1", placeBody(t, badQty, 75))
	checkStatus(t, w, http.StatusBadRequest)

	badPrice := []models.OrderItem{{ProductID: "p1", Name: "T-shirt", Price: -5, Quantity: 1}}
	w = performRequest(t, http.MethodPost, "/orders/place", h.PlaceCOD, "user-1", placeBody(t, badPrice, 45))
	checkStatus(t, w, http.StatusBadRequest)
}

func TestPlaceRequiresAuthentication(t *testing.T) {
	h, _, _ := newTestHandler()

	items := []models.OrderItem{{ProductID: "p1", Name: "T-shirt", Price: 25, Quantity: 1}}
	w := performRequest(t, http.MethodPost, "/orders/place", h.PlaceCOD, "", placeBody(t, items, 75))
	checkStatus(t, w, http.StatusUnauthorized)
}

func TestPlaceStripeReturnsSessionURL(t *testing.T) {
	h, orders, carts := newTestHandler()

	items := []models.OrderItem{{ProductID: "p1", Name: "T-shirt", Price: 25, Quantity: 1}}
	w := performRequest(t, http.MethodPost, "/orders/stripe", h.PlaceStripe, "user-1", placeBody(t, items, 75))
	checkStatus(t, w, http.StatusOK)

	var resp struct {
		Success    bool   `json:"success"`
		SessionURL string `json:"session_url"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success || resp.SessionURL == "" {
		t.Fatalf("session_url attendu, réponse: %s", w.Body.String())
	}

	// Le panier reste intact tant que le paiement n'est pas confirmé
	if carts.clearCount("user-1") != 0 {
		t.Error("le panier ne doit pas être vidé au placement Stripe")
	}

	all, _ := orders.ListAll(t.Context())
	if len(all) != 1 || all[0].Payment {
		t.Fatalf("une commande non payée attendue, obtenu: %+v", all)
	}
}

func TestPlacePayPalPersistsProviderOrderID(t *testing.T) {
	h, orders, _ := newTestHandler()

	items := []models.OrderItem{{ProductID: "p1", Name: "T-shirt", Price: 25, Quantity: 1}}
	w := performRequest(t, http.MethodPost, "/orders/paypal", h.PlacePayPal, "user-1", placeBody(t, items, 75))
	checkStatus(t, w, http.StatusOK)

	var resp struct {
		Success     bool   `json:"success"`
		ApprovalURL string `json:"approval_url"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success || resp.ApprovalURL == "" {
		t.Fatalf("approval_url attendu, réponse: %s", w.Body.String())
	}

	all, _ := orders.ListAll(t.Context())
	if len(all) != 1 {
		t.Fatalf("une commande attendue, obtenu %d", len(all))
	}
	if all[0].ProviderRefs.PayPalOrderID != "PP-"+all[0].ID {
		t.Errorf("id PayPal non persisté: %+v", all[0].ProviderRefs)
	}
}

func TestPlaceUnavailableMethodFails(t *testing.T) {
	h, _, _ := newTestHandler()
	delete(h.Gateways, models.PaymentPayPal)

	items := []models.OrderItem{{ProductID: "p1", Name: "T-shirt", Price: 25, Quantity: 1}}
	w := performRequest(t, http.MethodPost, "/orders/paypal", h.PlacePayPal, "user-1", placeBody(t, items, 75))
	checkStatus(t, w, http.StatusBadRequest)
}
