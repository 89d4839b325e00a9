package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gunalchandran/grocery-backend/models"
	"github.com/gunalchandran/grocery-backend/store"
	"github.com/gunalchandran/grocery-backend/uploads"
)

// ImageStore persists uploaded images and maps stored names to public URLs.
type ImageStore interface {
	SaveImage(fh *multipart.FileHeader) (string, error)
	URL(filename string) string
	Remove(filename string) error
}

// ProductForm holds the raw form values of a product create or update.
// A nil field was not present in the request.
type ProductForm struct {
	Name            *string
	Brand           *string
	Code            *string
	IngredientsText *string
	Price           *string
	Stock           *string
	SchemaVersion   *string
}

// Catalog manages the product collection.
type Catalog struct {
	products store.ProductStore
	images   ImageStore
}

func NewCatalog(products store.ProductStore, images ImageStore) *Catalog {
	return &Catalog{products: products, images: images}
}

// Create stores the image and inserts a product. Absent numeric fields
// default to stock 0, price 0 and schema version 1.
func (c *Catalog) Create(ctx context.Context, form ProductForm, image *multipart.FileHeader) (string, error) {
	const op = "catalog.Create"

	if image == nil {
		return "", newError(op, ErrValidation, "No image uploaded")
	}
	if image.Filename == "" {
		return "", newError(op, ErrValidation, "No selected file")
	}

	upd, err := parseProductForm(op, form)
	if err != nil {
		return "", err
	}
	filename, err := c.images.SaveImage(image)
	if err != nil {
		return "", imageError(op, err)
	}

	p := models.Product{SchemaVersion: 1, ImageURL: c.images.URL(filename)}
	upd.Apply(&p)

	id, err := c.products.InsertProduct(ctx, &p)
	if err != nil {
		_ = c.images.Remove(filename)
		return "", translate(op, err, "")
	}
	return id, nil
}

func (c *Catalog) List(ctx context.Context) ([]models.Product, error) {
	products, err := c.products.ListProducts(ctx)
	if err != nil {
		return nil, translate("catalog.List", err, "")
	}
	return products, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := c.products.FindProduct(ctx, id)
	if err != nil {
		return nil, translate("catalog.Get", err, "Product not found")
	}
	return p, nil
}

// Update applies the supplied fields and reports whether the stored
// product changed. An unknown id changes nothing and is not an error.
func (c *Catalog) Update(ctx context.Context, id string, form ProductForm, image *multipart.FileHeader) (bool, error) {
	const op = "catalog.Update"

	if _, err := store.ParseID(id); err != nil {
		return false, translate(op, err, "")
	}
	upd, err := parseProductForm(op, form)
	if err != nil {
		return false, err
	}
	if upd.Empty() && image == nil {
		return false, newError(op, ErrValidation, "No valid fields to update")
	}

	if _, err := c.products.FindProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, translate(op, err, "")
	}

	var saved string
	if image != nil {
		filename, err := c.images.SaveImage(image)
		if err != nil {
			return false, imageError(op, err)
		}
		saved = filename
		imageURL := c.images.URL(filename)
		upd.ImageURL = &imageURL
	}

	modified, err := c.products.UpdateProduct(ctx, id, upd)
	if err == nil && modified == 0 && saved != "" {
		// deleted between the lookup and the update
		err = store.ErrNotFound
	}
	if err != nil {
		if saved != "" {
			_ = c.images.Remove(saved)
		}
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, translate(op, err, "")
	}
	return modified > 0, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	const op = "catalog.Delete"

	deleted, err := c.products.DeleteProduct(ctx, id)
	if err != nil {
		return translate(op, err, "")
	}
	if deleted == 0 {
		return newError(op, ErrNotFound, "Product not found")
	}
	return nil
}

func imageError(op string, err error) error {
	switch {
	case errors.Is(err, uploads.ErrUnsupportedType):
		return &Error{Op: op, Kind: ErrValidation, Message: "Invalid file type", Err: err}
	case errors.Is(err, uploads.ErrNoFile):
		return &Error{Op: op, Kind: ErrValidation, Message: "No selected file", Err: err}
	}
	return &Error{Op: op, Message: "Failed to save image", Err: err}
}

func parseProductForm(op string, form ProductForm) (models.ProductUpdate, error) {
	upd := models.ProductUpdate{
		Name:            form.Name,
		Brand:           form.Brand,
		Code:            form.Code,
		IngredientsText: form.IngredientsText,
	}
	if form.Stock != nil {
		stock, err := parseCount(*form.Stock)
		if err != nil {
			return upd, &Error{Op: op, Kind: ErrValidation, Message: "Invalid stock", Err: err}
		}
		upd.Stock = &stock
	}
	if form.SchemaVersion != nil {
		v, err := parseCount(*form.SchemaVersion)
		if err != nil {
			return upd, &Error{Op: op, Kind: ErrValidation, Message: "Invalid schema_version", Err: err}
		}
		upd.SchemaVersion = &v
	}
	if form.Price != nil {
		price, err := parsePrice(*form.Price)
		if err != nil {
			return upd, &Error{Op: op, Kind: ErrValidation, Message: "Invalid price", Err: err}
		}
		upd.Price = &price
	}
	return upd, nil
}

var errNegative = errors.New("must not be negative")

func parseCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errNegative
	}
	return n, nil
}

func parsePrice(raw string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, errNegative
	}
	return d.InexactFloat64(), nil
}
