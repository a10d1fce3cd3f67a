package shops

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role values assignable to a shop account.
const (
	RoleShop   = "SHOP"
	RoleWriter = "WRITER"
	RoleEditor = "EDITOR"
	RoleAdmin  = "ADMIN"
)

// Shop statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Shop is the tenant identity owning products, discounts, and a credential
// record.
type Shop struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Status       string             `bson:"status" json:"status"`
	Verified     bool               `bson:"verify" json:"verify"`
	Roles        []string           `bson:"roles" json:"roles"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Profile is the subset of shop data echoed to clients. Password hashes and
// key material never leave the service layer.
type Profile struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// ProfileOf projects a shop onto its public profile.
func ProfileOf(s *Shop) Profile {
	return Profile{ID: s.ID, Name: s.Name, Email: s.Email}
}
