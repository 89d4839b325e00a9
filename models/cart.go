package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CartItem is one row of a user's cart. Name, price and image are copied from
// the product when the row is first created and are not refreshed afterwards.
type CartItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserEmail   string             `bson:"user" json:"user"`
	ProductID   string             `bson:"product_id" json:"product_id"`
	ProductName string             `bson:"product_name" json:"product_name"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Price       float64            `bson:"price" json:"price"`
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	// Image is the pre-image_url field still present on older rows.
	Image string `bson:"image,omitempty" json:"image,omitempty"`
}

// CartLine is a cart row as returned to clients.
type CartLine struct {
	CartItem   `bson:",inline"`
	TotalPrice float64 `json:"total_price"`
}
