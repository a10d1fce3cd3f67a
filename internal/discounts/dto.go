package discounts

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateRequest is the payload accepted by the create-code endpoint.
type CreateRequest struct {
	Name           string    `json:"discount_name" validate:"required"`
	Description    string    `json:"discount_description"`
	Type           string    `json:"discount_type" validate:"required,oneof=fixed_amount percentage"`
	Value          float64   `json:"discount_value" validate:"required,gt=0"`
	MaxValue       float64   `json:"discount_max_value" validate:"gte=0"`
	Code           string    `json:"discount_code" validate:"required"`
	StartDate      time.Time `json:"discount_start_date" validate:"required"`
	EndDate        time.Time `json:"discount_end_date" validate:"required"`
	MaxUses        int       `json:"discount_max_uses" validate:"required,gt=0"`
	MaxUsesPerUser int       `json:"discount_max_uses_per_user" validate:"required,gt=0"`
	MinOrderValue  float64   `json:"discount_min_order_value" validate:"gte=0"`
	AppliesTo      string    `json:"discount_applies_to" validate:"required,oneof=all specific"`
	ProductIDs     []string  `json:"discount_product_ids" validate:"required_if=AppliesTo specific,dive,len=24"`
}

// CartItem is one order line used when computing a discount amount.
type CartItem struct {
	ProductID string  `json:"productId" validate:"required,len=24"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"required,gte=0"`
}

// AmountRequest asks what a code is worth against an order.
type AmountRequest struct {
	Code   string     `json:"codeId" validate:"required"`
	UserID string     `json:"userId" validate:"required"`
	ShopID string     `json:"shopId" validate:"required,len=24"`
	Items  []CartItem `json:"products" validate:"required,min=1,dive"`
}

// AmountResult is the computed order totals for a code.
type AmountResult struct {
	TotalOrder float64 `json:"totalOrder"`
	Discount   float64 `json:"discount"`
	TotalPrice float64 `json:"totalPrice"`
}

// CancelRequest reverses a prior redemption.
type CancelRequest struct {
	Code   string `json:"codeId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

// parsedProductIDs converts the hex ids from the request, skipping the
// conversion entirely for all-product codes.
func (r CreateRequest) parsedProductIDs() ([]primitive.ObjectID, error) {
	if r.AppliesTo != AppliesToSpecific {
		return []primitive.ObjectID{}, nil
	}
	ids := make([]primitive.ObjectID, 0, len(r.ProductIDs))
	for _, raw := range r.ProductIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
