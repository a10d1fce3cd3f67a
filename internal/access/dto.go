package access

import (
	"github.com/shopflow/shopflow-backend/internal/shops"
	"github.com/shopflow/shopflow-backend/pkg/tokens"
)

// SignUpRequest is the registration payload.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the public shop profile and a fresh token pair.
type AuthResponse struct {
	Shop   shops.Profile `json:"shop"`
	Tokens *tokens.Pair  `json:"tokens"`
}

// RefreshResponse carries the identity the rotation was performed for and
// the replacement pair.
type RefreshResponse struct {
	User   RefreshUser  `json:"user"`
	Tokens *tokens.Pair `json:"tokens"`
}

// RefreshUser is the decoded identity from the presented refresh token.
type RefreshUser struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
