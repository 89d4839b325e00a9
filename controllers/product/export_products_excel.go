package productcontroller

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunalchandran/grocery-backend/controllers/respond"
	"github.com/gunalchandran/grocery-backend/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportProductsToExcel returns every product as products.xlsx. The sheet
// is built in memory so a failure can still be reported as JSON.
func ExportProductsToExcel(catalog *services.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := catalog.Export(c.Request.Context(), &buf); err != nil {
			respond.Error(c, err)
			return
		}

		c.Header("Content-Disposition", `attachment; filename="products.xlsx"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
