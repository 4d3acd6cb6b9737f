package routes

import (
	"velora_back_end/internal/handlers/order"
	"velora_back_end/internal/handlers/user"
	"velora_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes enregistre toutes les routes de l'API
func RegisterRoutes(r *gin.Engine, orders *order.Handler) {
	api := r.Group("/api")

	// ---------- Auth ----------
	auth := api.Group("/auth")
	{
		auth.POST("/register", user.CreateUser)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
		auth.POST("/refresh", user.Refresh)
		auth.POST("/logout", middleware.AuthRequired(), user.Logout)
		auth.GET("/me", middleware.AuthRequired(), user.Me)

		// OAuth (Google via goth)
		auth.GET("/:provider", user.BeginAuth)
		auth.GET("/:provider/callback", user.CallbackAuth)
	}

	// ---------- Panier ----------
	cart := api.Group("/cart", middleware.AuthRequired())
	{
		cart.GET("", user.GetCart)
		cart.POST("/add", user.AddToCart)
		cart.POST("/update", user.UpdateCart)
		cart.DELETE("/clear", user.ClearCart)
		cart.GET("/ws", user.CartWebSocket)
	}

	// ---------- Commandes ----------
	// Le webhook Stripe est authentifié par signature, pas par JWT
	api.POST("/orders/webhook/stripe", orders.StripeWebhook)

	ord := api.Group("/orders", middleware.AuthRequired())
	{
		ord.POST("/place", middleware.OrderRateLimit(), orders.PlaceCOD)
		ord.POST("/stripe", middleware.OrderRateLimit(), orders.PlaceStripe)
		ord.POST("/paypal", middleware.OrderRateLimit(), orders.PlacePayPal)
		ord.POST("/paypal/capture", orders.CapturePayPal)
		ord.POST("/verify", orders.Verify)
		ord.GET("/mine", orders.UserOrders)
		ord.GET("/:id/invoice", orders.InvoiceURL)
	}

	// ---------- Admin ----------
	admin := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.GET("/orders", orders.AllOrders)
		admin.PATCH("/orders/status", orders.UpdateOrderStatus)
		admin.GET("/orders/search", orders.AdminSearchOrders)
		admin.GET("/dashboard", orders.GetDashboardStats)
	}
}
