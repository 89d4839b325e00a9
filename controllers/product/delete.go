package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunalchandran/grocery-backend/controllers/respond"
	"github.com/gunalchandran/grocery-backend/services"
)

func DeleteProduct(catalog *services.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
