package orderControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunalchandran/grocery-backend/controllers/respond"
	"github.com/gunalchandran/grocery-backend/middleware"
	"github.com/gunalchandran/grocery-backend/models"
	"github.com/gunalchandran/grocery-backend/services"
)

// -------- Request Structs --------
type BulkOrderRequest struct {
	Orders []models.OrderRequest `json:"orders"`
}

type UpdateOrderStatusRequest struct {
	PaymentStatus  string `json:"payment_status"`
	DeliveryStatus string `json:"delivery_status"`
}

func caller(c *gin.Context) services.Caller {
	return services.Caller{Email: middleware.CurrentEmail(c), Admin: middleware.IsAdmin(c)}
}

// -------- Handlers --------

// POST /order
func PlaceOrderHandler(orders *services.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.OrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		id, err := orders.Place(c.Request.Context(), caller(c), req)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order_id": id})
	}
}

// POST /orders/bulk
func PlaceBulkOrdersHandler(orders *services.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BulkOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		ids, err := orders.PlaceBulk(c.Request.Context(), caller(c), req.Orders)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Bulk order placed successfully", "order_ids": ids})
	}
}

// GET /order-history
//
// Admins see every order, or one customer's with ?email=. Customers only
// ever see their own.
func OrderHistoryHandler(orders *services.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		history, err := orders.History(c.Request.Context(), caller(c), c.Query("email"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		if len(history) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "No orders found"})
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

// DELETE /cancel-order/:id
func CancelOrderHandler(orders *services.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := orders.Cancel(c.Request.Context(), caller(c), c.Param("id")); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order canceled successfully"})
	}
}

// PUT /orders/:id (admin)
func UpdateOrderStatusHandler(orders *services.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		err := orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.PaymentStatus, req.DeliveryStatus)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully"})
	}
}

// GET /orderss (admin)
func GetAllOrdersHandler(orders *services.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := orders.All(c.Request.Context())
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, all)
	}
}

// GET /admin/orders
func AdminOrdersHandler(orders *services.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries, err := orders.AdminSummaries(c.Request.Context())
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, summaries)
	}
}
