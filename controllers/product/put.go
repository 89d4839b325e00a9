package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunalchandran/grocery-backend/controllers/respond"
	"github.com/gunalchandran/grocery-backend/services"
)

// UpdateProduct applies a partial update. An optional "image" file
// replaces the product image.
func UpdateProduct(catalog *services.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		image, err := formImage(c, "image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
			return
		}

		changed, err := catalog.Update(c.Request.Context(), c.Param("id"), productForm(c), image)
		if err != nil {
			respond.Error(c, err)
			return
		}
		if !changed {
			c.JSON(http.StatusOK, gin.H{"message": "No changes made"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully"})
	}
}
