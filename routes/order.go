package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/gunalchandran/grocery-backend/controllers/order"
	"github.com/gunalchandran/grocery-backend/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	customer := r.Group("/")
	customer.Use(middleware.ValidateToken(d.Tokens))
	{
		customer.POST("/order", orderControllers.PlaceOrderHandler(d.Orders))
		customer.POST("/orders/bulk", orderControllers.PlaceBulkOrdersHandler(d.Orders))
		customer.GET("/order-history", orderControllers.OrderHistoryHandler(d.Orders))
		customer.DELETE("/cancel-order/:id", orderControllers.CancelOrderHandler(d.Orders))
	}

	admin := r.Group("/")
	admin.Use(middleware.ValidateToken(d.Tokens), middleware.RequireAdmin)
	{
		// Update payment and delivery status
		admin.PUT("/orders/:id", orderControllers.UpdateOrderStatusHandler(d.Orders))

		admin.GET("/orderss", orderControllers.GetAllOrdersHandler(d.Orders))
		admin.GET("/admin/orders", orderControllers.AdminOrdersHandler(d.Orders))

		// websocket endpoint for real-time order updates
		if d.Hub != nil {
			admin.GET("/orders/ws", d.Hub.OrderWebSocketHandler)
		}
	}
}
