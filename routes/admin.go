package routes

import (
	"github.com/gin-gonic/gin"

	adminController "github.com/gunalchandran/grocery-backend/controllers/admin"
	productcontroller "github.com/gunalchandran/grocery-backend/controllers/product"
	userControllers "github.com/gunalchandran/grocery-backend/controllers/user"
	"github.com/gunalchandran/grocery-backend/middleware"
)

// SetupAdminRoutes registers catalog management and admin tooling behind an
// admin token, and account provisioning behind the API key.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	adminGroup := r.Group("/")
	adminGroup.Use(middleware.ValidateToken(d.Tokens), middleware.RequireAdmin)
	{
		// ─────────── Product Management ───────────
		adminGroup.POST("/products", productcontroller.CreateProduct(d.Catalog))
		adminGroup.PUT("/products/:id", productcontroller.UpdateProduct(d.Catalog))
		adminGroup.DELETE("/products/:id", productcontroller.DeleteProduct(d.Catalog))
		adminGroup.GET("/admin/products/export", productcontroller.ExportProductsToExcel(d.Catalog))
		adminGroup.POST("/admin/products/import", productcontroller.ImportProductsFromExcel(d.Catalog))

		adminGroup.GET("/admin/stats", adminController.GetStats(d.Latency, d.Started))
	}

	keyed := r.Group("/admin")
	keyed.Use(middleware.ValidateAPIKey(d.AdminAPIKey))
	{
		keyed.POST("/register", userControllers.RegisterAdmin(d.Accounts))
	}
}
