package routes

import (
	"github.com/gin-gonic/gin"

	adminController "github.com/gunalchandran/grocery-backend/controllers/admin"
	billController "github.com/gunalchandran/grocery-backend/controllers/bill"
	productcontroller "github.com/gunalchandran/grocery-backend/controllers/product"
	userControllers "github.com/gunalchandran/grocery-backend/controllers/user"
)

// SetupAuthRoutes registers the endpoints that need no credentials.
func SetupAuthRoutes(r *gin.Engine, d Deps) {
	r.POST("/register", userControllers.Register(d.Accounts))
	r.POST("/login", userControllers.Login(d.Accounts))

	// ──────────────── Browse Products ────────────────
	r.GET("/products", productcontroller.ListProducts(d.Catalog))
	r.GET("/products/:id", productcontroller.GetProduct(d.Catalog))

	r.POST("/generate-bill", billController.GenerateBill)
	r.GET("/health", adminController.Health(d.Store, d.Logger))
}
