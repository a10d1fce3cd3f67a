package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopflow/shopflow-backend/pkg/config"
	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
)

var signingMethod = jwt.SigningMethodRS256

// Claims is the payload carried by both tokens of a pair.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Pair bundles a freshly minted access/refresh token. It is never persisted;
// only the current refresh token string is stored alongside the shop's keys.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer mints RS256 token pairs with the configured lifetimes.
type Issuer struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer validates lifetimes and returns an issuer. The refresh TTL must
// strictly exceed the access TTL so rotation can happen before full lockout.
func NewIssuer(cfg config.TokenConfig) (*Issuer, error) {
	if cfg.AccessTTL <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", cfg.RefreshTTL, cfg.AccessTTL)
	}
	return &Issuer{accessTTL: cfg.AccessTTL, refreshTTL: cfg.RefreshTTL}, nil
}

// Issue signs an access/refresh pair for the given identity using the shop's
// private key.
func (i *Issuer) Issue(userID, email, privatePEM string) (*Pair, error) {
	key, err := ParsePrivateKey(privatePEM)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	access, err := sign(userID, email, now, i.accessTTL, key)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := sign(userID, email, now, i.refreshTTL, key)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func sign(userID, email string, now time.Time, ttl time.Duration, key any) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(signingMethod, claims).SignedString(key)
}

// Verify checks the token signature and validity window against the shop's
// public key and returns the decoded claims. It is a pure function of its
// inputs.
func Verify(token, publicPEM string) (*Claims, error) {
	key, err := ParsePublicKey(publicPEM)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid verification key")
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			if t.Method != signingMethod {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	return claims, nil
}
