package keystore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Credential is the per-shop key record: the RSA pair used to sign and
// verify that shop's tokens, the refresh token currently accepted, and the
// set of refresh tokens already rotated away.
//
// Invariant: at most one live refresh token per shop. A token that entered
// RefreshTokensUsed is never accepted as current again; presenting one is
// treated as evidence of theft.
type Credential struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	ShopID            primitive.ObjectID `bson:"shop_id"`
	PublicKey         string             `bson:"public_key"`
	PrivateKey        string             `bson:"private_key"`
	RefreshToken      string             `bson:"refresh_token"`
	RefreshTokensUsed []string           `bson:"refresh_tokens_used"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

// HasUsed reports whether the token is a member of the used set.
func (c *Credential) HasUsed(token string) bool {
	for _, used := range c.RefreshTokensUsed {
		if used == token {
			return true
		}
	}
	return false
}
