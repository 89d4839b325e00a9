package billController

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGenerateBill(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/generate-bill", GenerateBill)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"items":[{"product_name":"Milk","quantity":2,"price":30.5}]}`, http.StatusOK},
		{"empty", `{"items":[]}`, http.StatusBadRequest},
		{"zero quantity", `{"items":[{"product_name":"Milk","quantity":0,"price":30}]}`, http.StatusBadRequest},
		{"no name", `{"items":[{"quantity":1,"price":30}]}`, http.StatusBadRequest},
		{"not json", `items`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/generate-bill", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
				assert.Contains(t, rec.Header().Get("Content-Disposition"), "bill.pdf")
				assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
			} else {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}
