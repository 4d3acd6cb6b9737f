package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"velora_back_end/internal/models"
	"velora_back_end/internal/store"
)

func verifyBody(t *testing.T, orderID string, success bool, method string) []byte {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{
		"orderId": orderID,
		"success": success,
		"method":  method,
	})
	return body
}

func TestVerifySuccessMarksStripeOrderPaid(t *testing.T) {
	h, orders, carts := newTestHandler()
	o := seedOrder(t, orders, models.Order{
		UserID: "user-1", PaymentMethod: models.PaymentStripe, Amount: 75,
		Items: []models.OrderItem{{ProductID: "p1", Name: "T-shirt", Price: 25, Quantity: 1}},
	})

	w := performRequest(t, http.MethodPost, "/orders/verify", h.Verify, "user-1", verifyBody(t, o.ID, true, "Stripe"))
	checkStatus(t, w, http.StatusOK)

	got := orders.mustGet(t, o.ID)
	if !got.Payment {
		t.Error("la commande doit être payée après verify success=true")
	}
	if carts.clearCount("user-1") != 1 {
		t.Errorf("le panier doit être vidé à la confirmation, vidages: %d", carts.clearCount("user-1"))
	}
}

func TestVerifyFailureCancelsOrder(t *testing.T) {
	h, orders, _ := newTestHandler()
	o := seedOrder(t, orders, models.Order{UserID: "user-1", PaymentMethod: models.PaymentStripe, Amount: 75})

	w := performRequest(t, http.MethodPost, "/orders/verify", h.Verify, "user-1", verifyBody(t, o.ID, false, "stripe"))
	checkStatus(t, w, http.StatusOK)

	got := orders.mustGet(t, o.ID)
	if got.Status != models.StatusCancelled {
		t.Errorf("statut attendu Cancelled, obtenu %q", got.Status)
	}
	if got.Payment {
		t.Error("une commande annulée ne doit pas être payée")
	}
	// La ligne est conservée, jamais supprimée
	if _, err := orders.GetByID(t.Context(), o.ID); err != nil {
		t.Errorf("la commande annulée doit rester lisible: %v", err)
	}
}

func TestVerifyFailureIsIdempotent(t *testing.T) {
	h, orders, _ := newTestHandler()
	o := seedOrder(t, orders, models.Order{
		UserID: "user-1", PaymentMethod: models.PaymentStripe,
		Status: models.StatusCancelled, Amount: 75,
	})

	w := performRequest(t, http.MethodPost, "/orders/verify", h.Verify, "user-1", verifyBody(t, o.ID, false, "stripe"))
	checkStatus(t, w, http.StatusOK)
}

func TestVerifyFailureOnPaidOrderRejected(t *testing.T) {
	h, orders, _ := newTestHandler()
	o := seedOrder(t, orders, models.Order{
		UserID: "user-1", PaymentMethod: models.PaymentStripe, Payment: true, Amount: 75,
	})

	w := performRequest(t, http.MethodPost, "/orders/verify", h.Verify, "user-1", verifyBody(t, o.ID, false, "stripe"))
	checkStatus(t, w, http.StatusBadRequest)

	got := orders.mustGet(t, o.ID)
	if got.Status == models.StatusCancelled {
		t.Error("une commande payée ne doit pas être annulée par verify")
	}
}

func TestVerifySuccessOnCancelledOrderRejected(t *testing.T) {
	h, orders, _ := newTestHandler()
	o := seedOrder(t, orders, models.Order{
		UserID: "user-1", PaymentMethod: models.PaymentStripe,
		Status: models.StatusCancelled, Amount: 75,
	})

	w := performRequest(t, http.MethodPost, "/orders/verify", h.Verify, "user-1", verifyBody(t, o.ID, true, "Stripe"))
	checkStatus(t, w, http.StatusBadRequest)

	got := orders.mustGet(t, o.ID)
	if got.Payment {
		t.Error("une commande annulée ne doit jamais devenir payée")
	}
}

func TestConfirmPaidRefusesConcurrentlyCancelledOrder(t *testing.T) {
	h, orders, carts := newTestHandler()
	o := seedOrder(t, orders, models.Order{UserID: "user-1", PaymentMethod: models.PaymentStripe, Amount: 75})

	// La commande est annulée après la lecture : la copie passée à la
	// confirmation porte encore l'ancien statut, seul le compare-and-set
	// du store voit l'annulation
	if err := orders.UpdateStatus(t.Context(), &o, models.StatusCancelled, "Rupture de stock"); err != nil {
		t.Fatalf("annulation stub échouée: %v", err)
	}

	applied, err := h.confirmPaid(t.Context(), &o)
	if !errors.Is(err, store.ErrOrderCancelled) {
		t.Fatalf("ErrOrderCancelled attendu, obtenu applied=%v err=%v", applied, err)
	}

	got := orders.mustGet(t, o.ID)
	if got.Payment {
		t.Error("une commande annulée ne doit jamais devenir payée")
	}
	if carts.clearCount("user-1") != 0 {
		t.Errorf("aucun effet de bord attendu, vidages panier: %d", carts.clearCount("user-1"))
	}
}

func TestVerifySuccessRejectsNonStripeMethods(t *testing.T) {
	h, orders, _ := newTestHandler()

	cod := seedOrder(t, orders, models.Order{UserID: "user-1", PaymentMethod: models.PaymentCOD, Amount: 75})
	w := performRequest(t, http.MethodPost, "/orders/verify", h.Verify, "user-1", verifyBody(t, cod.ID, true, "COD"))
	checkStatus(t, w, http.StatusBadRequest)

	pp := seedOrder(t, orders, models.Order{UserID: "user-1", PaymentMethod: models.PaymentPayPal, Amount: 75})
	w = performRequest(t, http.MethodPost, "/orders/verify", h.Verify, "user-1", verifyBody(t, pp.ID, true, "PayPal"))
	checkStatus(t, w, http.StatusBadRequest)
}

func TestVerifyRejectsForeignOrder(t *testing.T) {
	h, orders, _ := newTestHandler()
	o := seedOrder(t, orders, models.Order{UserID: "user-1", PaymentMethod: models.PaymentStripe, Amount: 75})

	w := performRequest(t, http.MethodPost, "/orders/verify", h.Verify, "user-2", verifyBody(t, o.ID, true, "Stripe"))
	checkStatus(t, w, http.StatusForbidden)
}

func TestVerifyUnknownOrder(t *testing.T) {
	h, _, _ := newTestHandler()

	w := performRequest(t, http.MethodPost, "/orders/verify", h.Verify, "user-1", verifyBody(t, "inconnue", true, "Stripe"))
	checkStatus(t, w, http.StatusNotFound)
}
