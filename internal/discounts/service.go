package discounts

import (
	"context"
	"fmt"
	"time"

	"github.com/shopflow/shopflow-backend/internal/products"
	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"github.com/shopflow/shopflow-backend/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service manages shop discount codes.
type Service interface {
	CreateCode(ctx context.Context, shopID primitive.ObjectID, req CreateRequest) (*Discount, error)
	ListCodesByShop(ctx context.Context, shopID primitive.ObjectID, params pagination.Params) ([]Discount, error)
	ListProductsForCode(ctx context.Context, shopID primitive.ObjectID, code string, query products.ListQuery) ([]products.Summary, error)
	Amount(ctx context.Context, req AmountRequest) (*AmountResult, error)
	Delete(ctx context.Context, shopID primitive.ObjectID, code string) error
	Cancel(ctx context.Context, shopID primitive.ObjectID, req CancelRequest) (*Discount, error)
}

type discountRepository interface {
	Insert(ctx context.Context, discount *Discount) error
	FindByCode(ctx context.Context, shopID primitive.ObjectID, code string) (*Discount, error)
	FindByShop(ctx context.Context, shopID primitive.ObjectID, params pagination.Params) ([]Discount, error)
	Delete(ctx context.Context, shopID primitive.ObjectID, code string) (bool, error)
	CancelUse(ctx context.Context, discountID primitive.ObjectID, userID string) (*Discount, error)
}

type productLister interface {
	ListByFilter(ctx context.Context, filter bson.M, query products.ListQuery) ([]products.Summary, error)
}

type service struct {
	repo     discountRepository
	products productLister
	now      func() time.Time
}

// ServiceParams carries the service dependencies.
type ServiceParams struct {
	Repository discountRepository
	Products   productLister
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("discount repository is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product lister is required")
	}
	return &service{
		repo:     params.Repository,
		products: params.Products,
		now:      time.Now,
	}, nil
}

func (s *service) CreateCode(ctx context.Context, shopID primitive.ObjectID, req CreateRequest) (*Discount, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date must be before end date")
	}
	if s.now().After(req.EndDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code has expired")
	}

	existing, err := s.repo.FindByCode(ctx, shopID, req.Code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up discount code")
	}
	if existing != nil && existing.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount code already exists")
	}

	productIDs, err := req.parsedProductIDs()
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id in discount scope")
	}

	discount := &Discount{
		Name:           req.Name,
		Description:    req.Description,
		Type:           req.Type,
		Value:          req.Value,
		MaxValue:       req.MaxValue,
		Code:           req.Code,
		StartDate:      req.StartDate.UTC(),
		EndDate:        req.EndDate.UTC(),
		MaxUses:        req.MaxUses,
		UsesCount:      0,
		UsersUsed:      []string{},
		MaxUsesPerUser: req.MaxUsesPerUser,
		MinOrderValue:  req.MinOrderValue,
		ShopID:         shopID,
		IsActive:       true,
		AppliesTo:      req.AppliesTo,
		ProductIDs:     productIDs,
	}
	if err := s.repo.Insert(ctx, discount); err != nil {
		// The unique code+shop index settles create races the FindByCode
		// pre-check cannot.
		if pkgerrors.IsDuplicateKey(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "discount code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount code")
	}
	return discount, nil
}

func (s *service) ListCodesByShop(ctx context.Context, shopID primitive.ObjectID, params pagination.Params) ([]Discount, error) {
	rows, err := s.repo.FindByShop(ctx, shopID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discount codes")
	}
	return rows, nil
}

// ListProductsForCode resolves the catalog entries a code applies to: either
// every published product of the shop, or the pinned product set.
func (s *service) ListProductsForCode(ctx context.Context, shopID primitive.ObjectID, code string, query products.ListQuery) ([]products.Summary, error) {
	discount, err := s.repo.FindByCode(ctx, shopID, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up discount code")
	}
	if discount == nil || !discount.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}

	filter := bson.M{"is_published": true}
	switch discount.AppliesTo {
	case AppliesToAll:
		filter["product_shop"] = discount.ShopID
	case AppliesToSpecific:
		filter["_id"] = bson.M{"$in": discount.ProductIDs}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unexpected applies_to %q", discount.AppliesTo))
	}
	return s.products.ListByFilter(ctx, filter, query)
}

func (s *service) Amount(ctx context.Context, req AmountRequest) (*AmountResult, error) {
	shopID, err := primitive.ObjectIDFromHex(req.ShopID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shop id")
	}

	discount, err := s.repo.FindByCode(ctx, shopID, req.Code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up discount code")
	}
	if discount == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}
	if !discount.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code has expired")
	}
	if discount.MaxUses-discount.UsesCount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code has been fully redeemed")
	}
	now := s.now()
	if now.Before(discount.StartDate) || now.After(discount.EndDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code has expired")
	}

	totalOrder := 0.0
	for _, item := range req.Items {
		totalOrder += item.Price * float64(item.Quantity)
	}
	if discount.MinOrderValue > 0 && totalOrder < discount.MinOrderValue {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("order must be at least %.2f to use this code", discount.MinOrderValue))
	}
	if discount.MaxUsesPerUser > 0 && discount.usedBy(req.UserID) >= discount.MaxUsesPerUser {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount usage limit reached for this user")
	}

	amount := discount.Value
	if discount.Type == TypePercentage {
		amount = totalOrder * discount.Value / 100
		// max value caps what a percentage code can be worth on large orders
		if discount.MaxValue > 0 && amount > discount.MaxValue {
			amount = discount.MaxValue
		}
	}
	if amount > totalOrder {
		amount = totalOrder
	}

	return &AmountResult{
		TotalOrder: totalOrder,
		Discount:   amount,
		TotalPrice: totalOrder - amount,
	}, nil
}

func (s *service) Delete(ctx context.Context, shopID primitive.ObjectID, code string) error {
	deleted, err := s.repo.Delete(ctx, shopID, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete discount code")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}
	return nil
}

// Cancel reverses a redemption for a user, restoring the use to the pool.
func (s *service) Cancel(ctx context.Context, shopID primitive.ObjectID, req CancelRequest) (*Discount, error) {
	discount, err := s.repo.FindByCode(ctx, shopID, req.Code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up discount code")
	}
	if discount == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}

	updated, err := s.repo.CancelUse(ctx, discount.ID, req.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel discount use")
	}
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}
	return updated, nil
}
