package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product is a document in the Products collection. Field names follow the
// storefront's existing documents, so "product_name" and "brands" stay as-is.
type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name            string             `bson:"product_name" json:"product_name"`
	Brand           string             `bson:"brands" json:"brands"`
	Code            string             `bson:"code" json:"code"`
	ImageURL        string             `bson:"image_url" json:"image_url"`
	IngredientsText string             `bson:"ingredients_text" json:"ingredients_text"`
	Price           float64            `bson:"price" json:"price"`
	Stock           int                `bson:"stock" json:"stock"`
	SchemaVersion   int                `bson:"schema_version" json:"schema_version"`
}

// ProductUpdate carries the fields of a partial product update. Nil fields
// are left untouched.
type ProductUpdate struct {
	Name            *string
	Brand           *string
	Code            *string
	ImageURL        *string
	IngredientsText *string
	Price           *float64
	Stock           *int
	SchemaVersion   *int
}

// Empty reports whether the update sets nothing.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Brand == nil && u.Code == nil && u.ImageURL == nil &&
		u.IngredientsText == nil && u.Price == nil && u.Stock == nil && u.SchemaVersion == nil
}

// Apply copies the set fields onto p and reports whether any value changed.
func (u ProductUpdate) Apply(p *Product) bool {
	changed := false
	setString := func(dst *string, v *string) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = true
		}
	}
	setInt := func(dst *int, v *int) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = true
		}
	}
	setString(&p.Name, u.Name)
	setString(&p.Brand, u.Brand)
	setString(&p.Code, u.Code)
	setString(&p.ImageURL, u.ImageURL)
	setString(&p.IngredientsText, u.IngredientsText)
	setInt(&p.Stock, u.Stock)
	setInt(&p.SchemaVersion, u.SchemaVersion)
	if u.Price != nil && p.Price != *u.Price {
		p.Price = *u.Price
		changed = true
	}
	return changed
}
