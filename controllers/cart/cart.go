package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunalchandran/grocery-backend/controllers/respond"
	"github.com/gunalchandran/grocery-backend/middleware"
	"github.com/gunalchandran/grocery-backend/services"
)

// CartItemInput is the body of POST /cart. A missing quantity means one.
type CartItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type quantityInput struct {
	Quantity *int `json:"quantity"`
}

// POST /cart
func AddToCart(cart *services.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		quantity := 1
		if input.Quantity != nil {
			quantity = *input.Quantity
		}

		err := cart.AddItem(c.Request.Context(), middleware.CurrentEmail(c), input.ProductID, quantity)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart"})
	}
}

// GET /cart
func GetCart(cart *services.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := cart.List(c.Request.Context(), middleware.CurrentEmail(c))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

// PUT /cart/:id
func UpdateCartItem(cart *services.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input quantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		quantity := 0
		if input.Quantity != nil {
			quantity = *input.Quantity
		}

		err := cart.UpdateQuantity(c.Request.Context(), middleware.CurrentEmail(c), c.Param("id"), quantity)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart updated"})
	}
}

// DELETE /cart/:id
func RemoveCartItem(cart *services.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := cart.RemoveItem(c.Request.Context(), middleware.CurrentEmail(c), c.Param("id")); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item removed"})
	}
}

// DELETE /cart
func ClearCart(cart *services.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		removed, err := cart.Clear(c.Request.Context(), middleware.CurrentEmail(c))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared", "removed": removed})
	}
}
