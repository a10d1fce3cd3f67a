package controllers

import (
	"net/http"

	"github.com/shopflow/shopflow-backend/api/middleware"
	"github.com/shopflow/shopflow-backend/api/responses"
	"github.com/shopflow/shopflow-backend/api/validators"
	"github.com/shopflow/shopflow-backend/internal/access"
	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"github.com/shopflow/shopflow-backend/pkg/logger"
)

// SignUp registers a new shop and returns its first token pair.
func SignUp(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload access.SignUpRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SignUp(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "shop registered", result)
	}
}

// Login authenticates a shop and re-keys its session.
func Login(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload access.LoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "login success", result)
	}
}

// Logout revokes the shop's key credential.
func Logout(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential := middleware.CredentialFromContext(r.Context())
		if credential == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		if err := svc.Logout(r.Context(), credential); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "logout success", nil)
	}
}

// HandleRefreshToken rotates the presented refresh token for a new pair.
func HandleRefreshToken(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		credential := middleware.CredentialFromContext(ctx)
		claims := middleware.ClaimsFromContext(ctx)
		refreshToken := middleware.RefreshTokenFromContext(ctx)
		if credential == nil || claims == nil || refreshToken == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing refresh token"))
			return
		}

		user := access.RefreshUser{UserID: claims.UserID, Email: claims.Email}
		result, err := svc.RefreshTokens(ctx, refreshToken, user, credential)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "token refreshed", result)
	}
}
