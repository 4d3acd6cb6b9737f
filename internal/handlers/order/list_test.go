package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"velora_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

func TestUserOrdersNewestFirst(t *testing.T) {
	h, orders, _ := newTestHandler()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, orders, models.Order{ID: "ancienne", UserID: "user-1", PaymentMethod: models.PaymentCOD, Amount: 75, CreatedAt: base})
	seedOrder(t, orders, models.Order{ID: "recente", UserID: "user-1", PaymentMethod: models.PaymentCOD, Amount: 75, CreatedAt: base.Add(time.Hour)})
	seedOrder(t, orders, models.Order{ID: "autre-user", UserID: "user-2", PaymentMethod: models.PaymentCOD, Amount: 75, CreatedAt: base})

	w := performRequest(t, http.MethodGet, "/orders/mine", h.UserOrders, "user-1", nil)
	checkStatus(t, w, http.StatusOK)

	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("réponse illisible: %v", err)
	}
	if len(resp.Orders) != 2 {
		t.Fatalf("2 commandes attendues pour user-1, obtenu %d", len(resp.Orders))
	}
	if resp.Orders[0].ID != "recente" || resp.Orders[1].ID != "ancienne" {
		t.Errorf("tri par date décroissante attendu, obtenu %s puis %s", resp.Orders[0].ID, resp.Orders[1].ID)
	}
}

func TestAllOrdersJoinsUserInfo(t *testing.T) {
	h, orders, _ := newTestHandler()
	seedOrder(t, orders, models.Order{UserID: "user-1", PaymentMethod: models.PaymentCOD, Amount: 75})

	w := performRequest(t, http.MethodGet, "/admin/orders", h.AllOrders, "admin-1", nil)
	checkStatus(t, w, http.StatusOK)

	var resp struct {
		Orders []struct {
			UserName  string `json:"userName"`
			UserEmail string `json:"userEmail"`
		} `json:"orders"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Orders) != 1 {
		t.Fatalf("1 commande attendue, obtenu %d", len(resp.Orders))
	}
	if resp.Orders[0].UserName != "Client Test" || resp.Orders[0].UserEmail != "client@test.be" {
		t.Errorf("infos client attendues dans la ligne admin: %+v", resp.Orders[0])
	}
}

func invoiceRequest(t *testing.T, h *Handler, orderID, userID, role string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.GET("/orders/:id/invoice", func(c *gin.Context) {
		c.Set("user_id", userID)
		if role != "" {
			c.Set("role", role)
		}
		h.InvoiceURL(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID+"/invoice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestInvoiceURLRequiresPaidOrder(t *testing.T) {
	h, orders, _ := newTestHandler()
	o := seedOrder(t, orders, models.Order{UserID: "user-1", PaymentMethod: models.PaymentStripe, Amount: 75})

	w := invoiceRequest(t, h, o.ID, "user-1", "")
	checkStatus(t, w, http.StatusBadRequest)
}

func TestInvoiceURLSignsArchivedInvoice(t *testing.T) {
	h, orders, _ := newTestHandler()
	o := seedOrder(t, orders, models.Order{UserID: "user-1", PaymentMethod: models.PaymentStripe, Payment: true, Amount: 75})
	h.Invoices.(*stubInvoiceStore).Store(context.Background(), o.ID, "<html>facture</html>")

	w := invoiceRequest(t, h, o.ID, "user-1", "")
	checkStatus(t, w, http.StatusOK)

	var resp struct {
		URL string `json:"url"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.URL != "https://minio.test/invoices/"+o.ID+".html" {
		t.Errorf("URL signée attendue, obtenu %q", resp.URL)
	}
}

func TestInvoiceURLFailsWhenInvoiceMissing(t *testing.T) {
	h, orders, _ := newTestHandler()
	o := seedOrder(t, orders, models.Order{UserID: "user-1", PaymentMethod: models.PaymentStripe, Payment: true, Amount: 75})

	// Payée mais jamais archivée : le lien ne doit pas être un 200 mort
	w := invoiceRequest(t, h, o.ID, "user-1", "")
	checkStatus(t, w, http.StatusInternalServerError)
}

func TestInvoiceURLRejectsForeignOrder(t *testing.T) {
	h, orders, _ := newTestHandler()
	o := seedOrder(t, orders, models.Order{UserID: "user-1", PaymentMethod: models.PaymentStripe, Payment: true, Amount: 75})

	w := invoiceRequest(t, h, o.ID, "user-2", "")
	checkStatus(t, w, http.StatusForbidden)
}

func TestDashboardStats(t *testing.T) {
	h, orders, _ := newTestHandler()

	seedOrder(t, orders, models.Order{UserID: "u1", PaymentMethod: models.PaymentCOD, Payment: true, Amount: 100})
	seedOrder(t, orders, models.Order{UserID: "u2", PaymentMethod: models.PaymentStripe, Payment: true, Amount: 50})
	seedOrder(t, orders, models.Order{UserID: "u3", PaymentMethod: models.PaymentStripe, Amount: 75})

	w := performRequest(t, http.MethodGet, "/admin/dashboard", h.GetDashboardStats, "admin-1", nil)
	checkStatus(t, w, http.StatusOK)

	var resp struct {
		TotalOrders       int     `json:"total_orders"`
		PaidOrders        int     `json:"paid_orders"`
		UnpaidOrders      int     `json:"unpaid_orders"`
		TotalRevenue      float64 `json:"total_revenue"`
		AverageOrderValue float64 `json:"average_order_value"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.TotalOrders != 3 || resp.PaidOrders != 2 || resp.UnpaidOrders != 1 {
		t.Errorf("comptes inattendus: %+v", resp)
	}
	if resp.TotalRevenue != 150 {
		t.Errorf("chiffre d'affaires attendu 150 (commandes payées uniquement), obtenu %.2f", resp.TotalRevenue)
	}
	if resp.AverageOrderValue != 75 {
		t.Errorf("panier moyen attendu 75, obtenu %.2f", resp.AverageOrderValue)
	}
}

func TestDashboardSearchRequiresQuery(t *testing.T) {
	h, _, _ := newTestHandler()

	w := performRequest(t, http.MethodGet, "/admin/orders/search", h.AdminSearchOrders, "admin-1", nil)
	checkStatus(t, w, http.StatusBadRequest)
}
