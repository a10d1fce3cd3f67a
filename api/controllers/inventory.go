package controllers

import (
	"net/http"

	"github.com/shopflow/shopflow-backend/api/responses"
	"github.com/shopflow/shopflow-backend/api/validators"
	"github.com/shopflow/shopflow-backend/internal/inventory"
	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"github.com/shopflow/shopflow-backend/pkg/logger"
)

type adjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// GetInventory returns the stock record for an owned product.
func GetInventory(repo *inventory.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential, ok := requireCredential(w, r, logg)
		if !ok {
			return
		}

		productID, err := parseObjectIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := repo.GetByProductID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory"))
			return
		}
		if record == nil || record.ShopID != credential.ShopID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found"))
			return
		}

		responses.WriteSuccess(w, "inventory", record)
	}
}

// AdjustInventory applies a relative stock change to an owned product.
func AdjustInventory(repo *inventory.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential, ok := requireCredential(w, r, logg)
		if !ok {
			return
		}

		productID, err := parseObjectIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := repo.AdjustStock(r.Context(), productID, credential.ShopID, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust inventory"))
			return
		}
		if record == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found"))
			return
		}

		responses.WriteSuccess(w, "inventory updated", record)
	}
}
