package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/gunalchandran/grocery-backend/controllers/cart"
	userControllers "github.com/gunalchandran/grocery-backend/controllers/user"
	"github.com/gunalchandran/grocery-backend/middleware"
)

// SetupUserRoutes registers the customer endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	userGroup := r.Group("/")
	userGroup.Use(middleware.ValidateToken(d.Tokens))
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/protected", userControllers.Protected)
		userGroup.POST("/update-profile", userControllers.UpdateProfile(d.Accounts))
		userGroup.GET("/get-profile", userControllers.GetProfile(d.Accounts))

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.POST("", cartControllers.AddToCart(d.Cart))
			cartGroup.GET("", cartControllers.GetCart(d.Cart))
			cartGroup.PUT("/:id", cartControllers.UpdateCartItem(d.Cart))
			cartGroup.DELETE("/:id", cartControllers.RemoveCartItem(d.Cart))
			cartGroup.DELETE("", cartControllers.ClearCart(d.Cart))
		}
	}
}
