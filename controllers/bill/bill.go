package billController

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunalchandran/grocery-backend/billing"
)

type GenerateBillRequest struct {
	Items []billing.Item `json:"items"`
}

// POST /generate-bill
func GenerateBill(c *gin.Context) {
	var req GenerateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var pdf bytes.Buffer
	err := billing.Render(&pdf, req.Items)
	switch {
	case errors.Is(err, billing.ErrNoItems):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No items provided"})
		return
	case errors.Is(err, billing.ErrInvalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate bill"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bill.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf.Bytes())
}
