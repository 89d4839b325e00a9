package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gunalchandran/grocery-backend/models"
	"github.com/gunalchandran/grocery-backend/store"
)

const (
	legacyImagePrefix = "uploads/"
	defaultCartImage  = "uploads/default.jpg"
)

// Cart manages per-user cart rows.
type Cart struct {
	cart     store.CartStore
	products store.ProductStore
}

func NewCart(cart store.CartStore, products store.ProductStore) *Cart {
	return &Cart{cart: cart, products: products}
}

// AddItem adds quantity units of a product to the user's cart. Repeated
// adds accumulate on the same row.
func (c *Cart) AddItem(ctx context.Context, email, productID string, quantity int) error {
	const op = "cart.AddItem"

	if strings.TrimSpace(email) == "" || strings.TrimSpace(productID) == "" {
		return newError(op, ErrValidation, "Missing email or product_id")
	}
	if quantity < 1 {
		return newError(op, ErrValidation, "Quantity must be at least 1")
	}

	p, err := c.products.FindProduct(ctx, productID)
	if err != nil {
		return translate(op, err, "Product not found")
	}
	err = c.cart.AddToCart(ctx, &models.CartItem{
		UserEmail:   email,
		ProductID:   p.ID.Hex(),
		ProductName: p.Name,
		Quantity:    quantity,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
	})
	return translate(op, err, "")
}

// List returns the user's cart with line totals and a usable image path.
func (c *Cart) List(ctx context.Context, email string) ([]models.CartLine, error) {
	items, err := c.cart.ListCart(ctx, email)
	if err != nil {
		return nil, translate("cart.List", err, "")
	}
	lines := make([]models.CartLine, 0, len(items))
	for _, item := range items {
		normalizeImage(&item)
		lines = append(lines, models.CartLine{
			CartItem:   item,
			TotalPrice: lineTotal(item.Price, item.Quantity),
		})
	}
	return lines, nil
}

// normalizeImage leaves an explicit image_url alone. Older rows only carry
// a bare filename in image, which is prefixed with the uploads path.
func normalizeImage(item *models.CartItem) {
	switch {
	case item.ImageURL != "":
	case item.Image != "":
		if !strings.HasPrefix(item.Image, legacyImagePrefix) {
			item.Image = legacyImagePrefix + item.Image
		}
	default:
		item.Image = defaultCartImage
	}
}

func lineTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}

// UpdateQuantity sets the quantity of one of the user's rows.
func (c *Cart) UpdateQuantity(ctx context.Context, email, itemID string, quantity int) error {
	const op = "cart.UpdateQuantity"

	if quantity < 1 {
		return newError(op, ErrValidation, "Quantity must be at least 1")
	}
	matched, err := c.cart.SetCartQuantity(ctx, email, itemID, quantity)
	if err != nil {
		return translate(op, err, "")
	}
	if matched == 0 {
		return newError(op, ErrNotFound, "Item not found")
	}
	return nil
}

func (c *Cart) RemoveItem(ctx context.Context, email, itemID string) error {
	const op = "cart.RemoveItem"

	deleted, err := c.cart.DeleteCartItem(ctx, email, itemID)
	if err != nil {
		return translate(op, err, "")
	}
	if deleted == 0 {
		return newError(op, ErrNotFound, "Item not found")
	}
	return nil
}

// Clear empties the user's cart and returns how many rows were removed.
func (c *Cart) Clear(ctx context.Context, email string) (int64, error) {
	if strings.TrimSpace(email) == "" {
		return 0, newError("cart.Clear", ErrValidation, "Email is required")
	}
	n, err := c.cart.ClearCart(ctx, email)
	if err != nil {
		return 0, translate("cart.Clear", err, "")
	}
	return n, nil
}
