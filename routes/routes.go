package routes

import (
	"net/http"

	"storefront-service/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterSessionRoutes sets up the storefront session API.
func RegisterSessionRoutes(r gin.IRouter, sc *controllers.SessionController) {
	sessions := r.Group("/sessions")
	sessions.POST("", sc.StartSession)
	sessions.GET("/:id", sc.GetSession)
	sessions.DELETE("/:id", sc.EndSession)
	sessions.GET("/:id/events", sc.ListEvents)

	sessions.GET("/:id/products", sc.ListProducts)
	sessions.GET("/:id/products/:product_id", sc.GetProduct)

	sessions.POST("/:id/navigation/home", sc.NavigateHome)
	sessions.POST("/:id/navigation/category", sc.SelectCategory)

	cart := sessions.Group("/:id/cart")
	cart.POST("/items", sc.AddItem)
	cart.DELETE("/items/:product_id", sc.RemoveItem)
	cart.PATCH("/items/:product_id", sc.ChangeQuantity)
	cart.POST("/view", sc.ViewCart)

	checkout := sessions.Group("/:id/checkout")
	checkout.POST("", sc.BeginCheckout)
	checkout.DELETE("", sc.CancelCheckout)
	checkout.POST("/confirm", sc.ConfirmPurchase)
	checkout.POST("/continue", sc.ContinueShopping)

	sessions.POST("/:id/promotions/click", sc.ClickPromotion)
}

// RegisterHealthRoutes exposes the liveness probe.
func RegisterHealthRoutes(r gin.IRouter, serviceName string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})
}
