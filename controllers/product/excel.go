package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunalchandran/grocery-backend/controllers/respond"
	"github.com/gunalchandran/grocery-backend/services"
)

// ImportProductsFromExcel reads the uploaded "file" spreadsheet. Rows with
// a known ID update that product and every other row is inserted.
func ImportProductsFromExcel(catalog *services.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		result, err := catalog.Import(c.Request.Context(), file, excelFileHeader.Size)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": result.Created,
			"updated_count": result.Updated,
			"skipped_count": result.Skipped,
		})
	}
}
