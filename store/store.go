// Package store is the document store behind the storefront: products,
// users, cart rows and orders. MongoStore is the production backend and
// MemoryStore serves tests and local runs without a database.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gunalchandran/grocery-backend/models"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidID         = errors.New("invalid document id")
	ErrDuplicate         = errors.New("duplicate key")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductStore persists the catalog.
type ProductStore interface {
	InsertProduct(ctx context.Context, p *models.Product) (string, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	FindProduct(ctx context.Context, id string) (*models.Product, error)
	// UpdateProduct applies a partial update and returns the number of
	// documents actually modified. An unknown id modifies zero documents.
	UpdateProduct(ctx context.Context, id string, upd models.ProductUpdate) (int64, error)
	DeleteProduct(ctx context.Context, id string) (int64, error)
	// ReserveStock decrements stock by qty only when at least qty units are
	// available. It returns ErrInsufficientStock when the guard fails.
	ReserveStock(ctx context.Context, id string, qty int) error
	// ReleaseStock increments stock by qty.
	ReleaseStock(ctx context.Context, id string, qty int) error
}

// CartStore persists cart rows, one per (user, product).
type CartStore interface {
	// AddToCart increments the quantity of the user's row for the item's
	// product, creating the row from item when none exists.
	AddToCart(ctx context.Context, item *models.CartItem) error
	ListCart(ctx context.Context, email string) ([]models.CartItem, error)
	SetCartQuantity(ctx context.Context, email, itemID string, qty int) (int64, error)
	DeleteCartItem(ctx context.Context, email, itemID string) (int64, error)
	ClearCart(ctx context.Context, email string) (int64, error)
}

// OrderStore persists orders.
type OrderStore interface {
	InsertOrder(ctx context.Context, o *models.Order) (string, error)
	// InsertOrders writes all orders in one batch. Orders without an ID get
	// one assigned before the write.
	InsertOrders(ctx context.Context, orders []*models.Order) ([]string, error)
	DeleteOrders(ctx context.Context, ids []primitive.ObjectID) error
	FindOrder(ctx context.Context, id string) (*models.Order, error)
	FindCustomerOrder(ctx context.Context, id, email string) (*models.Order, error)
	// ListOrders returns orders in insertion order. An empty email lists
	// every order.
	ListOrders(ctx context.Context, email string) ([]models.Order, error)
	// TransitionDelivery sets delivery_status to `to` only while it equals
	// `from`, and reports whether the order was changed.
	TransitionDelivery(ctx context.Context, id, from, to string) (bool, error)
	UpdateOrderStatus(ctx context.Context, id, paymentStatus, deliveryStatus string) (int64, error)
}

// UserStore persists accounts.
type UserStore interface {
	InsertUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate) (int64, error)
}

// Store is the full document store.
type Store interface {
	ProductStore
	CartStore
	OrderStore
	UserStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ParseID converts a hex identifier into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
