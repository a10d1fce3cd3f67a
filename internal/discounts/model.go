package discounts

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discount value semantics.
const (
	TypeFixedAmount = "fixed_amount"
	TypePercentage  = "percentage"
)

// Product scoping for a code.
const (
	AppliesToAll      = "all"
	AppliesToSpecific = "specific"
)

// Discount is a shop-owned promotion code. UsersUsed is always stored as an
// explicit list so `$pull` on cancellation never touches a missing field.
type Discount struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name           string               `bson:"discount_name" json:"discount_name"`
	Description    string               `bson:"discount_description" json:"discount_description"`
	Type           string               `bson:"discount_type" json:"discount_type"`
	Value          float64              `bson:"discount_value" json:"discount_value"`
	MaxValue       float64              `bson:"discount_max_value" json:"discount_max_value"`
	Code           string               `bson:"discount_code" json:"discount_code"`
	StartDate      time.Time            `bson:"discount_start_date" json:"discount_start_date"`
	EndDate        time.Time            `bson:"discount_end_date" json:"discount_end_date"`
	MaxUses        int                  `bson:"discount_max_uses" json:"discount_max_uses"`
	UsesCount      int                  `bson:"discount_uses_count" json:"discount_uses_count"`
	UsersUsed      []string             `bson:"discount_users_used" json:"discount_users_used"`
	MaxUsesPerUser int                  `bson:"discount_max_uses_per_user" json:"discount_max_uses_per_user"`
	MinOrderValue  float64              `bson:"discount_min_order_value" json:"discount_min_order_value"`
	ShopID         primitive.ObjectID   `bson:"discount_shopId" json:"discount_shopId"`
	IsActive       bool                 `bson:"discount_is_active" json:"discount_is_active"`
	AppliesTo      string               `bson:"discount_applies_to" json:"discount_applies_to"`
	ProductIDs     []primitive.ObjectID `bson:"discount_product_ids" json:"discount_product_ids"`
	CreatedAt      time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updatedAt"`
}

// usedBy counts how many times a user id appears in the used list.
func (d *Discount) usedBy(userID string) int {
	n := 0
	for _, u := range d.UsersUsed {
		if u == userID {
			n++
		}
	}
	return n
}
