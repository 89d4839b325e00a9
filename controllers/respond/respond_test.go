package respond

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/gunalchandran/grocery-backend/services"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		kind   error
		status int
	}{
		{services.ErrValidation, http.StatusBadRequest},
		{services.ErrInvalidState, http.StatusBadRequest},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrInsufficientStock, http.StatusConflict},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.kind.Error(), func(t *testing.T) {
			err := &services.Error{Op: "test", Kind: tc.kind, Message: "msg"}
			assert.Equal(t, tc.status, Status(err))
			assert.Equal(t, tc.status, Status(fmt.Errorf("wrapped: %w", err)))
		})
	}
}

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, &services.Error{Op: "orders.Cancel", Kind: services.ErrInvalidState, Message: "Order cannot be canceled"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Order cannot be canceled"}`, rec.Body.String())
	assert.True(t, c.IsAborted())
	assert.Empty(t, c.Errors)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	Error(c, errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"connection refused"}`, rec.Body.String())
	assert.Len(t, c.Errors, 1)
}
