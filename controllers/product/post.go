package productcontroller

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunalchandran/grocery-backend/controllers/respond"
	"github.com/gunalchandran/grocery-backend/services"
)

// CreateProduct adds a product from a multipart form with an "image" file.
func CreateProduct(catalog *services.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		image, err := formImage(c, "image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
			return
		}

		id, err := catalog.Create(c.Request.Context(), productForm(c), image)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Product added", "product_id": id})
	}
}

// productForm collects the product fields present in the request form.
func productForm(c *gin.Context) services.ProductForm {
	field := func(key string) *string {
		if v, ok := c.GetPostForm(key); ok {
			return &v
		}
		return nil
	}
	return services.ProductForm{
		Name:            field("product_name"),
		Brand:           field("brands"),
		Code:            field("code"),
		IngredientsText: field("ingredients_text"),
		Price:           field("price"),
		Stock:           field("stock"),
		SchemaVersion:   field("schema_version"),
	}
}

// formImage returns the named file, or nil when the request has none.
func formImage(c *gin.Context, key string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(key)
	switch {
	case err == nil:
		return fh, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	}
	return nil, err
}
