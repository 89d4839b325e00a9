package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery statuses the order workflow acts on. Any other value is stored
// and returned untouched.
const (
	DeliveryPending   = "Pending"
	DeliveryCanceled  = "Canceled"
	DeliveryDelivered = "Delivered"
)

// Order is a document in the Orders collection. Price is the product's unit
// price at the time the order was placed.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email          string             `bson:"email" json:"email"`
	Name           string             `bson:"name" json:"name"`
	Phone          string             `bson:"phone" json:"phone"`
	ProductID      string             `bson:"product_id" json:"product_id"`
	ProductName    string             `bson:"product_name" json:"product_name"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	Price          float64            `bson:"price" json:"price"`
	TotalPrice     float64            `bson:"total_price" json:"total_price"`
	OrderDate      string             `bson:"order_date" json:"order_date"`
	OrderTime      string             `bson:"order_time" json:"order_time"`
	DeliveryTime   string             `bson:"delivery_time" json:"delivery_time"`
	PaymentMethod  string             `bson:"payment_method" json:"payment_method"`
	PaymentStatus  string             `bson:"payment_status" json:"payment_status"`
	DeliveryStatus string             `bson:"delivery_status" json:"delivery_status"`
	Address        string             `bson:"address" json:"address"`
	Image          string             `bson:"image,omitempty" json:"image,omitempty"`
	PlacedAt       time.Time          `bson:"placed_at" json:"placed_at"`
}

// OrderRequest is the client payload for placing an order. Quantity is left
// untyped because clients send both numbers and numeric strings. Any price
// the client sends is ignored.
type OrderRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       any    `json:"quantity"`
	OrderDate      string `json:"order_date"`
	OrderTime      string `json:"order_time"`
	DeliveryTime   string `json:"delivery_time"`
	PaymentMethod  string `json:"payment_method"`
	PaymentStatus  string `json:"payment_status"`
	DeliveryStatus string `json:"delivery_status"`
	Address        string `json:"address"`
}

// OrderHistoryEntry is an order as listed by order history. Dates, times
// and the total are rendered as plain strings.
type OrderHistoryEntry struct {
	ID             string  `json:"_id"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	ProductID      string  `json:"product_id"`
	ProductName    string  `json:"product_name"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
	TotalPrice     string  `json:"total_price"`
	OrderDate      string  `json:"order_date"`
	OrderTime      string  `json:"order_time"`
	DeliveryTime   string  `json:"delivery_time"`
	PaymentMethod  string  `json:"payment_method"`
	PaymentStatus  string  `json:"payment_status"`
	DeliveryStatus string  `json:"delivery_status"`
	Address        string  `json:"address"`
	Image          string  `json:"image,omitempty"`
}

// OrderSummary is the admin dashboard projection of an order.
type OrderSummary struct {
	ID             string  `json:"_id"`
	OrderDate      string  `json:"order_date"`
	DeliveryStatus string  `json:"delivery_status"`
	PaymentMethod  string  `json:"payment_method"`
	TotalPrice     float64 `json:"total_price"`
	ProductName    string  `json:"product_name"`
	Quantity       int     `json:"quantity"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
}
