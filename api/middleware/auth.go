package middleware

import (
	"net/http"
	"strings"

	"github.com/shopflow/shopflow-backend/api/responses"
	"github.com/shopflow/shopflow-backend/internal/access"
	"github.com/shopflow/shopflow-backend/internal/keystore"
	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"github.com/shopflow/shopflow-backend/pkg/logger"
	"github.com/shopflow/shopflow-backend/pkg/tokens"
)

// Request headers carrying shop identity and tokens.
const (
	HeaderClientID      = "x-client-id"
	HeaderAuthorization = "Authorization"
	HeaderRefreshToken  = "x-rtoken-id"
)

// VerifyFunc checks a token against a PEM public key. tokens.Verify in
// production; swapped in middleware tests.
type VerifyFunc func(token, publicPEM string) (*tokens.Claims, error)

// Auth validates the access token presented with the shop's client id and
// seeds the request context with the credential and claims.
func Auth(keys keystore.Store, verify VerifyFunc, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential, ok := lookupCredential(w, r, keys, logg)
			if !ok {
				return
			}

			claims, ok := verifyBearer(w, r, credential, verify, logg)
			if !ok {
				return
			}

			ctx := WithCredential(r.Context(), credential)
			ctx = WithClaims(ctx, claims)
			if logg != nil {
				ctx = logg.WithShopID(ctx, claims.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthV2 extends Auth with the refresh-token path: when the refresh header is
// present it takes precedence over the bearer token, so an expired access
// token never blocks a rotation request.
func AuthV2(keys keystore.Store, verify VerifyFunc, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential, ok := lookupCredential(w, r, keys, logg)
			if !ok {
				return
			}

			if refreshToken := strings.TrimSpace(r.Header.Get(HeaderRefreshToken)); refreshToken != "" {
				claims, err := verify(refreshToken, credential.PublicKey)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				if claims.UserID != credential.ShopID.Hex() {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid shop id"))
					return
				}

				ctx := WithCredential(r.Context(), credential)
				ctx = WithClaims(ctx, claims)
				ctx = WithRefreshToken(ctx, refreshToken)
				if logg != nil {
					ctx = logg.WithShopID(ctx, claims.UserID)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			claims, ok := verifyBearer(w, r, credential, verify, logg)
			if !ok {
				return
			}

			ctx := WithCredential(r.Context(), credential)
			ctx = WithClaims(ctx, claims)
			if logg != nil {
				ctx = logg.WithShopID(ctx, claims.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// lookupCredential resolves the x-client-id header to a stored credential.
// Writes the error response itself and reports false on any failure.
func lookupCredential(w http.ResponseWriter, r *http.Request, keys keystore.Store, logg *logger.Logger) (*keystore.Credential, bool) {
	clientID := strings.TrimSpace(r.Header.Get(HeaderClientID))
	if clientID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing client id"))
		return nil, false
	}

	shopID, err := access.ParseShopID(clientID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}

	credential, err := keys.FindByShopID(r.Context(), shopID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load credential"))
		return nil, false
	}
	if credential == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "credential not found"))
		return nil, false
	}
	return credential, true
}

// verifyBearer checks the Authorization token against the credential's public
// key and binds the claimed identity to the client id.
func verifyBearer(w http.ResponseWriter, r *http.Request, credential *keystore.Credential, verify VerifyFunc, logg *logger.Logger) (*tokens.Claims, bool) {
	raw := strings.TrimSpace(r.Header.Get(HeaderAuthorization))
	if raw == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return nil, false
	}

	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return nil, false
	}

	claims, err := verify(token, credential.PublicKey)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	if claims.UserID != credential.ShopID.Hex() {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid shop id"))
		return nil, false
	}
	return claims, true
}
