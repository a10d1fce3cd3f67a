package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopflow/shopflow-backend/api/middleware"
	"github.com/shopflow/shopflow-backend/api/responses"
	"github.com/shopflow/shopflow-backend/api/validators"
	"github.com/shopflow/shopflow-backend/internal/keystore"
	productsvc "github.com/shopflow/shopflow-backend/internal/products"
	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"github.com/shopflow/shopflow-backend/pkg/logger"
)

// CreateProduct handles authenticated product creation.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential, ok := requireCredential(w, r, logg)
		if !ok {
			return
		}

		var payload productsvc.CreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.CreateInput{
			Name:        payload.Name,
			Thumb:       payload.Thumb,
			Description: payload.Description,
			Price:       payload.Price,
			Quantity:    payload.Quantity,
			Type:        payload.Type,
			ShopID:      credential.ShopID,
			Attributes:  payload.Attributes,
		}

		product, err := svc.Create(r.Context(), payload.Type, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "product created", product)
	}
}

// UpdateProduct applies a partial update to an owned product.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCredential(w, r, logg); !ok {
			return
		}

		productID, err := parseObjectIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productsvc.UpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), payload.Type, productID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "product updated", product)
	}
}

// PublishProduct moves a draft into the public catalog.
func PublishProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return setPublishState(svc, logg, true, "product published")
}

// UnpublishProduct pulls a product back into drafts.
func UnpublishProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return setPublishState(svc, logg, false, "product unpublished")
}

func setPublishState(svc productsvc.Service, logg *logger.Logger, published bool, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential, ok := requireCredential(w, r, logg)
		if !ok {
			return
		}

		productID, err := parseObjectIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if published {
			err = svc.Publish(r.Context(), credential.ShopID, productID)
		} else {
			err = svc.Unpublish(r.Context(), credential.ShopID, productID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, message, nil)
	}
}

// ListDraftProducts lists the shop's drafts.
func ListDraftProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listForShop(svc, logg, false, "draft products")
}

// ListPublishedProducts lists the shop's published catalog entries.
func ListPublishedProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return listForShop(svc, logg, true, "published products")
}

func listForShop(svc productsvc.Service, logg *logger.Logger, published bool, message string) http.HandlerFunc {
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

		var rows []productsvc.Product
		if published {
			rows, err = svc.ListPublished(r.Context(), credential.ShopID, params.Take(), params.Skip())
		} else {
			rows, err = svc.ListDrafts(r.Context(), credential.ShopID, params.Take(), params.Skip())
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, message, rows)
	}
}

// SearchProducts runs a full-text search over the public catalog.
func SearchProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keyword := chi.URLParam(r, "keySearch")

		rows, err := svc.Search(r.Context(), keyword)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "search results", rows)
	}
}

// ListProducts serves the paginated public catalog.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sort := strings.TrimSpace(r.URL.Query().Get("sort"))
		if sort == "" {
			sort = "ctime"
		}

		rows, err := svc.List(r.Context(), productsvc.ListQuery{
			Page:  params.Page,
			Limit: params.Limit,
			Sort:  sort,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "products", rows)
	}
}

// GetProduct fetches a single product by id.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parseObjectIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "product", product)
	}
}

func requireCredential(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*keystore.Credential, bool) {
	credential := middleware.CredentialFromContext(r.Context())
	if credential == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return nil, false
	}
	return credential, true
}

func parseObjectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"param": name})
	}
	return id, nil
}
