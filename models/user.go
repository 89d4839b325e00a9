package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is a document in the Users collection. Email is unique.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	ProfilePic   string             `bson:"profile_pic,omitempty" json:"profile_pic,omitempty"`
}

// Profile is the public view of a user. ProfileURL is null when no picture
// has been uploaded.
type Profile struct {
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	ProfileURL *string `json:"profile_url"`
}

// ProfileUpdate holds the mutable profile fields. An empty ProfilePic keeps
// the stored picture.
type ProfileUpdate struct {
	Phone      string
	ProfilePic string
}
