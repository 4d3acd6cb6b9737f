package order

import (
	"log"
	"net/http"

	"velora_back_end/internal/models"
	"velora_back_end/internal/search"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats retourne les statistiques commandes du dashboard admin
func (h *Handler) GetDashboardStats(c *gin.Context) {
	orders, err := h.Orders.ListAll(c.Request.Context())
	if err != nil {
		log.Printf("❌ Erreur lecture stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération statistiques"})
		return
	}

	var totalRevenue float64
	var paidOrders, unpaidOrders int
	statusCount := make(map[models.OrderStatus]int)
	methodCount := make(map[models.PaymentMethod]int)

	for _, o := range orders {
		statusCount[o.Status]++
		methodCount[o.PaymentMethod]++
		if o.Payment {
			paidOrders++
			totalRevenue += o.Amount
		} else {
			unpaidOrders++
		}
	}

	var averageOrderValue float64
	if paidOrders > 0 {
		averageOrderValue = totalRevenue / float64(paidOrders)
	}

	c.JSON(http.StatusOK, gin.H{
		"total_orders":        len(orders),
		"paid_orders":         paidOrders,
		"unpaid_orders":       unpaidOrders,
		"total_revenue":       totalRevenue,
		"average_order_value": averageOrderValue,
		"by_status":           statusCount,
		"by_payment_method":   methodCount,
	})
}

// AdminSearchOrders recherche des commandes via Elasticsearch (admin)
func (h *Handler) AdminSearchOrders(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	results, err := search.SearchOrders(query)
	if err != nil {
		log.Printf("❌ Erreur recherche commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
