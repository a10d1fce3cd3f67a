package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopflow/shopflow-backend/internal/keystore"
	"github.com/shopflow/shopflow-backend/internal/shops"
	"github.com/shopflow/shopflow-backend/pkg/config"
	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"github.com/shopflow/shopflow-backend/pkg/security"
	"github.com/shopflow/shopflow-backend/pkg/tokens"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const invalidCredentialsMessage = "invalid credentials"

// Service orchestrates signup, login, logout, and refresh-token rotation.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, credential *keystore.Credential) error
	RefreshTokens(ctx context.Context, refreshToken string, user RefreshUser, credential *keystore.Credential) (*RefreshResponse, error)
}

type shopRepository interface {
	Create(ctx context.Context, shop *shops.Shop) (*shops.Shop, error)
	FindByEmail(ctx context.Context, email string) (*shops.Shop, error)
}

type tokenIssuer interface {
	Issue(userID, email, privatePEM string) (*tokens.Pair, error)
}

// keyPairGenerator is swappable so tests avoid real RSA generation cost.
type keyPairGenerator func(bits int) (*tokens.KeyPair, error)

type service struct {
	shops       shopRepository
	keys        keystore.Store
	issuer      tokenIssuer
	generateKey keyPairGenerator
	passwordCfg config.PasswordConfig
	rsaBits     int
}

// ServiceParams bundles the dependencies required to build an access service.
type ServiceParams struct {
	ShopRepo       shopRepository
	KeyStore       keystore.Store
	Issuer         tokenIssuer
	GenerateKey    keyPairGenerator
	PasswordConfig config.PasswordConfig
	TokenConfig    config.TokenConfig
}

// NewService constructs the access service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ShopRepo == nil {
		return nil, fmt.Errorf("shop repository is required")
	}
	if params.KeyStore == nil {
		return nil, fmt.Errorf("key store is required")
	}
	if params.Issuer == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	gen := params.GenerateKey
	if gen == nil {
		gen = tokens.GenerateKeyPair
	}
	return &service{
		shops:       params.ShopRepo,
		keys:        params.KeyStore,
		issuer:      params.Issuer,
		generateKey: gen,
		passwordCfg: params.PasswordConfig,
		rsaBits:     params.TokenConfig.RSABits,
	}, nil
}

// SignUp registers a new shop, provisions its key pair, and issues the first
// token pair.
func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.shops.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check shop email")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "shop already registered")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	shop, err := s.shops.Create(ctx, &shops.Shop{
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        []string{shops.RoleShop},
	})
	if err != nil {
		// A concurrent signup can slip past the email pre-check; the unique
		// index is the authority.
		if pkgerrors.IsDuplicateKey(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "shop already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}

	pair, err := s.generateKey(s.rsaBits)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate key pair")
	}

	tokenPair, err := s.issuer.Issue(shop.ID.Hex(), email, pair.PrivatePEM)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue token pair")
	}

	storedPublicKey, err := s.keys.Upsert(ctx, shop.ID, pair.PublicPEM, pair.PrivatePEM, tokenPair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if storedPublicKey != pair.PublicPEM {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "public key did not round-trip")
	}

	return &AuthResponse{Shop: shops.ProfileOf(shop), Tokens: tokenPair}, nil
}

// Login authenticates the shop and re-keys it. Each login replaces the key
// pair, which invalidates every token minted under the previous pair; this
// is intentional single-active-session semantics.
func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	shop, err := s.shops.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup shop")
	}
	if shop == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop not registered")
	}

	match, err := security.VerifyPassword(req.Password, shop.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	pair, err := s.generateKey(s.rsaBits)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate key pair")
	}

	tokenPair, err := s.issuer.Issue(shop.ID.Hex(), shop.Email, pair.PrivatePEM)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue token pair")
	}

	if _, err := s.keys.Upsert(ctx, shop.ID, pair.PublicPEM, pair.PrivatePEM, tokenPair.RefreshToken); err != nil {
		return nil, err
	}

	return &AuthResponse{Shop: shops.ProfileOf(shop), Tokens: tokenPair}, nil
}

// Logout drops the credential record. Safe to call repeatedly.
func (s *service) Logout(ctx context.Context, credential *keystore.Credential) error {
	if credential == nil {
		return nil
	}
	return s.keys.Delete(ctx, credential.ShopID)
}

// RefreshTokens performs single-use rotation with reuse detection: a token
// found in the used-set is treated as a security incident and the whole
// credential lineage is revoked.
func (s *service) RefreshTokens(ctx context.Context, refreshToken string, user RefreshUser, credential *keystore.Credential) (*RefreshResponse, error) {
	if credential == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	// Reuse detection is store-wide: the presented token may have been
	// rotated away under any credential generation, not just this one.
	reused, err := s.keys.FindByUsedRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if reused != nil {
		if err := s.keys.Delete(ctx, reused.ShopID); err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "something went wrong, please re-login")
	}

	holder, err := s.keys.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if holder == nil || holder.ShopID != credential.ShopID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shop not registered")
	}

	shop, err := s.shops.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup shop")
	}
	if shop == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shop not registered")
	}

	tokenPair, err := s.issuer.Issue(user.UserID, user.Email, credential.PrivateKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue token pair")
	}

	if err := s.keys.RotateRefreshToken(ctx, credential.ShopID, tokenPair.RefreshToken, refreshToken); err != nil {
		return nil, err
	}

	return &RefreshResponse{User: user, Tokens: tokenPair}, nil
}

// ParseShopID converts the wire-format shop id into an object id.
func ParseShopID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid client id")
	}
	return id, nil
}
