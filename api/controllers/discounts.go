package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shopflow/shopflow-backend/api/responses"
	"github.com/shopflow/shopflow-backend/api/validators"
	"github.com/shopflow/shopflow-backend/internal/access"
	discountsvc "github.com/shopflow/shopflow-backend/internal/discounts"
	productsvc "github.com/shopflow/shopflow-backend/internal/products"
	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"github.com/shopflow/shopflow-backend/pkg/logger"
)

// CreateDiscountCode registers a new code for the authenticated shop.
func CreateDiscountCode(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential, ok := requireCredential(w, r, logg)
		if !ok {
			return
		}

		var payload discountsvc.CreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := svc.CreateCode(r.Context(), credential.ShopID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "discount code created", discount)
	}
}

// ListDiscountCodes lists the authenticated shop's active codes.
func ListDiscountCodes(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential, ok := requireCredential(w, r, logg)
		if !ok {
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListCodesByShop(r.Context(), credential.ShopID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "discount codes", rows)
	}
}

// ListProductsForDiscountCode resolves which products a public code covers.
// Takes shopId and code as query parameters; no authentication required.
func ListProductsForDiscountCode(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shopID, err := access.ParseShopID(r.URL.Query().Get("shopId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid shop id"))
			return
		}
		code := strings.TrimSpace(r.URL.Query().Get("code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "discount code is required"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListProductsForCode(r.Context(), shopID, code, productsvc.ListQuery{
			Page:  params.Page,
			Limit: params.Limit,
			Sort:  "ctime",
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "discount products", rows)
	}
}

// DiscountAmount computes what a code is worth against an order.
func DiscountAmount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload discountsvc.AmountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Amount(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "discount amount", result)
	}
}

// DeleteDiscountCode removes one of the authenticated shop's codes.
func DeleteDiscountCode(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential, ok := requireCredential(w, r, logg)
		if !ok {
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "discount code is required"))
			return
		}

		if err := svc.Delete(r.Context(), credential.ShopID, code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "discount code deleted", nil)
	}
}

// CancelDiscountCode reverses a redemption for a user.
func CancelDiscountCode(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential, ok := requireCredential(w, r, logg)
		if !ok {
			return
		}

		var payload discountsvc.CancelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := svc.Cancel(r.Context(), credential.ShopID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "discount use cancelled", discount)
	}
}
