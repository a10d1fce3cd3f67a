package middleware

import (
	"context"

	"github.com/shopflow/shopflow-backend/internal/keystore"
	"github.com/shopflow/shopflow-backend/pkg/tokens"
)

type contextKey string

const (
	ctxCredential   contextKey = "credential"
	ctxClaims       contextKey = "claims"
	ctxRefreshToken contextKey = "refresh_token"
)

// CredentialFromContext returns the key credential attached by the auth
// middleware, or nil.
func CredentialFromContext(ctx context.Context) *keystore.Credential {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxCredential).(*keystore.Credential); ok {
		return v
	}
	return nil
}

// ClaimsFromContext returns the verified token claims, or nil.
func ClaimsFromContext(ctx context.Context) *tokens.Claims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*tokens.Claims); ok {
		return v
	}
	return nil
}

// RefreshTokenFromContext returns the raw refresh token presented on the
// request, or "" when the access-token path was taken.
func RefreshTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRefreshToken).(string); ok {
		return v
	}
	return ""
}

// WithCredential injects the credential into the context.
func WithCredential(ctx context.Context, credential *keystore.Credential) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCredential, credential)
}

// WithClaims injects the verified claims into the context.
func WithClaims(ctx context.Context, claims *tokens.Claims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}

// WithRefreshToken injects the raw refresh token into the context.
func WithRefreshToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRefreshToken, token)
}
