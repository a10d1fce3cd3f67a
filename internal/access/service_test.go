package access

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopflow/shopflow-backend/internal/keystore"
	"github.com/shopflow/shopflow-backend/internal/shops"
	"github.com/shopflow/shopflow-backend/pkg/config"
	pkgerrors "github.com/shopflow/shopflow-backend/pkg/errors"
	"github.com/shopflow/shopflow-backend/pkg/security"
	"github.com/shopflow/shopflow-backend/pkg/tokens"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type stubShopRepo struct {
	byEmail   map[string]*shops.Shop
	created   []*shops.Shop
	createErr error
}

func (s *stubShopRepo) Create(_ context.Context, shop *shops.Shop) (*shops.Shop, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	shop.ID = primitive.NewObjectID()
	s.created = append(s.created, shop)
	if s.byEmail == nil {
		s.byEmail = map[string]*shops.Shop{}
	}
	s.byEmail[shop.Email] = shop
	return shop, nil
}

func (s *stubShopRepo) FindByEmail(_ context.Context, email string) (*shops.Shop, error) {
	return s.byEmail[email], nil
}

type stubKeyStore struct {
	upserts  int
	rotated  [][2]string
	deleted  []primitive.ObjectID
	byShopID map[primitive.ObjectID]*keystore.Credential
}

func (s *stubKeyStore) Upsert(_ context.Context, shopID primitive.ObjectID, publicKey, privateKey, refreshToken string) (string, error) {
	s.upserts++
	if s.byShopID == nil {
		s.byShopID = map[primitive.ObjectID]*keystore.Credential{}
	}
	s.byShopID[shopID] = &keystore.Credential{
		ShopID:       shopID,
		PublicKey:    publicKey,
		PrivateKey:   privateKey,
		RefreshToken: refreshToken,
	}
	return publicKey, nil
}

func (s *stubKeyStore) FindByShopID(_ context.Context, shopID primitive.ObjectID) (*keystore.Credential, error) {
	return s.byShopID[shopID], nil
}

func (s *stubKeyStore) FindByRefreshToken(_ context.Context, token string) (*keystore.Credential, error) {
	for _, cred := range s.byShopID {
		if cred.RefreshToken == token {
			return cred, nil
		}
	}
	return nil, nil
}

func (s *stubKeyStore) FindByUsedRefreshToken(_ context.Context, token string) (*keystore.Credential, error) {
	for _, cred := range s.byShopID {
		if cred.HasUsed(token) {
			return cred, nil
		}
	}
	return nil, nil
}

func (s *stubKeyStore) RotateRefreshToken(_ context.Context, _ primitive.ObjectID, newToken, consumedToken string) error {
	s.rotated = append(s.rotated, [2]string{newToken, consumedToken})
	return nil
}

func (s *stubKeyStore) Delete(_ context.Context, shopID primitive.ObjectID) error {
	s.deleted = append(s.deleted, shopID)
	delete(s.byShopID, shopID)
	return nil
}

type stubIssuer struct {
	pair *tokens.Pair
}

func (s *stubIssuer) Issue(string, string, string) (*tokens.Pair, error) {
	return s.pair, nil
}

func stubKeyGen(int) (*tokens.KeyPair, error) {
	return &tokens.KeyPair{PublicPEM: "pub-pem", PrivatePEM: "priv-pem"}, nil
}

func cheapPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T, repo *stubShopRepo, keys *stubKeyStore, issuer tokenIssuer) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		ShopRepo:       repo,
		KeyStore:       keys,
		Issuer:         issuer,
		GenerateKey:    stubKeyGen,
		PasswordConfig: cheapPasswordConfig(),
		TokenConfig:    config.TokenConfig{RSABits: 2048},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSignUpHappyPath(t *testing.T) {
	repo := &stubShopRepo{}
	keys := &stubKeyStore{}
	svc := newTestService(t, repo, keys, &stubIssuer{pair: &tokens.Pair{AccessToken: "at", RefreshToken: "rt"}})

	result, err := svc.SignUp(context.Background(), SignUpRequest{
		Name:     "Widget Works",
		Email:    "Owner@Example.com",
		Password: "sup3rsecret",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if result.Shop.Email != "owner@example.com" {
		t.Fatalf("expected lowercased email, got %q", result.Shop.Email)
	}
	if result.Tokens.AccessToken != "at" || result.Tokens.RefreshToken != "rt" {
		t.Fatalf("unexpected tokens %+v", result.Tokens)
	}
	if keys.upserts != 1 {
		t.Fatalf("expected one credential upsert, got %d", keys.upserts)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one shop created, got %d", len(repo.created))
	}
	if got := repo.created[0].Roles; len(got) != 1 || got[0] != shops.RoleShop {
		t.Fatalf("unexpected roles %v", got)
	}
	if repo.created[0].PasswordHash == "sup3rsecret" {
		t.Fatal("password must not be stored in the clear")
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	repo := &stubShopRepo{byEmail: map[string]*shops.Shop{
		"owner@example.com": {Email: "owner@example.com"},
	}}
	svc := newTestService(t, repo, &stubKeyStore{}, &stubIssuer{pair: &tokens.Pair{}})

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Name:     "Dup",
		Email:    "owner@example.com",
		Password: "sup3rsecret",
	})
	if err == nil {
		t.Fatal("expected conflict")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestSignUpMapsDuplicateKeyRaceToConflict(t *testing.T) {
	// The email pre-check sees nothing, but the insert loses the race and the
	// unique index fires.
	repo := &stubShopRepo{
		createErr: fmt.Errorf("insert shop: %w", mongo.WriteException{
			WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
		}),
	}
	svc := newTestService(t, repo, &stubKeyStore{}, &stubIssuer{pair: &tokens.Pair{}})

	_, err := svc.SignUp(context.Background(), SignUpRequest{
		Name:     "Raced",
		Email:    "owner@example.com",
		Password: "sup3rsecret",
	})
	if err == nil {
		t.Fatal("expected conflict")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestLoginRejectsUnknownShop(t *testing.T) {
	svc := newTestService(t, &stubShopRepo{}, &stubKeyStore{}, &stubIssuer{pair: &tokens.Pair{}})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if err == nil {
		t.Fatal("expected error for unknown shop")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	hash, err := security.HashPassword("right-password", cheapPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	repo := &stubShopRepo{byEmail: map[string]*shops.Shop{
		"owner@example.com": {Email: "owner@example.com", PasswordHash: hash},
	}}
	keys := &stubKeyStore{}
	svc := newTestService(t, repo, keys, &stubIssuer{pair: &tokens.Pair{}})

	_, err = svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "wrong-password"})
	if err == nil {
		t.Fatal("expected error for wrong password")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if keys.upserts != 0 {
		t.Fatal("failed login must not touch the key store")
	}
}

func TestLoginRekeysShop(t *testing.T) {
	hash, err := security.HashPassword("right-password", cheapPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	shop := &shops.Shop{ID: primitive.NewObjectID(), Email: "owner@example.com", PasswordHash: hash}
	repo := &stubShopRepo{byEmail: map[string]*shops.Shop{shop.Email: shop}}
	keys := &stubKeyStore{}
	svc := newTestService(t, repo, keys, &stubIssuer{pair: &tokens.Pair{AccessToken: "at2", RefreshToken: "rt2"}})

	result, err := svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "right-password"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Tokens.RefreshToken != "rt2" {
		t.Fatalf("unexpected refresh token %q", result.Tokens.RefreshToken)
	}
	stored := keys.byShopID[shop.ID]
	if stored == nil || stored.RefreshToken != "rt2" {
		t.Fatalf("expected stored refresh token rt2, got %+v", stored)
	}
}

func TestLoginTokensVerifyAgainstStoredPublicKey(t *testing.T) {
	pair, err := tokens.GenerateKeyPair(2048)
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	issuer, err := tokens.NewIssuer(config.TokenConfig{AccessTTL: 48 * time.Hour, RefreshTTL: 168 * time.Hour})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	hash, err := security.HashPassword("right-password", cheapPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	shop := &shops.Shop{ID: primitive.NewObjectID(), Email: "owner@example.com", PasswordHash: hash}
	repo := &stubShopRepo{byEmail: map[string]*shops.Shop{shop.Email: shop}}
	keys := &stubKeyStore{}

	svc, err := NewService(ServiceParams{
		ShopRepo:       repo,
		KeyStore:       keys,
		Issuer:         issuer,
		GenerateKey:    func(int) (*tokens.KeyPair, error) { return pair, nil },
		PasswordConfig: cheapPasswordConfig(),
		TokenConfig:    config.TokenConfig{RSABits: 2048},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginRequest{Email: "owner@example.com", Password: "right-password"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	stored := keys.byShopID[shop.ID]
	if stored == nil {
		t.Fatal("login must store the credential")
	}
	for name, token := range map[string]string{
		"access":  result.Tokens.AccessToken,
		"refresh": result.Tokens.RefreshToken,
	} {
		claims, err := tokens.Verify(token, stored.PublicKey)
		if err != nil {
			t.Fatalf("%s token must verify against the stored public key: %v", name, err)
		}
		if claims.UserID != shop.ID.Hex() || claims.Email != shop.Email {
			t.Fatalf("unexpected %s claims %+v", name, claims)
		}
	}
}

func TestRefreshTokensDetectsReuse(t *testing.T) {
	shopID := primitive.NewObjectID()
	credential := &keystore.Credential{
		ShopID:            shopID,
		RefreshToken:      "current",
		RefreshTokensUsed: []string{"stolen"},
	}
	keys := &stubKeyStore{byShopID: map[primitive.ObjectID]*keystore.Credential{shopID: credential}}
	svc := newTestService(t, &stubShopRepo{}, keys, &stubIssuer{pair: &tokens.Pair{}})

	_, err := svc.RefreshTokens(context.Background(), "stolen", RefreshUser{UserID: shopID.Hex(), Email: "owner@example.com"}, credential)
	if err == nil {
		t.Fatal("expected reuse to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if len(keys.deleted) != 1 || keys.deleted[0] != shopID {
		t.Fatal("reuse must revoke the whole credential lineage")
	}
}

func TestRefreshTokensRejectsStaleToken(t *testing.T) {
	credential := &keystore.Credential{ShopID: primitive.NewObjectID(), RefreshToken: "current"}
	keys := &stubKeyStore{}
	svc := newTestService(t, &stubShopRepo{}, keys, &stubIssuer{pair: &tokens.Pair{}})

	_, err := svc.RefreshTokens(context.Background(), "not-current", RefreshUser{Email: "owner@example.com"}, credential)
	if err == nil {
		t.Fatal("expected stale token to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if len(keys.rotated) != 0 {
		t.Fatal("stale token must not rotate")
	}
}

func TestRefreshTokensRotates(t *testing.T) {
	shopID := primitive.NewObjectID()
	credential := &keystore.Credential{ShopID: shopID, RefreshToken: "current", PrivateKey: "priv-pem"}
	repo := &stubShopRepo{byEmail: map[string]*shops.Shop{
		"owner@example.com": {ID: shopID, Email: "owner@example.com"},
	}}
	keys := &stubKeyStore{byShopID: map[primitive.ObjectID]*keystore.Credential{shopID: credential}}
	svc := newTestService(t, repo, keys, &stubIssuer{pair: &tokens.Pair{AccessToken: "at3", RefreshToken: "rt3"}})

	user := RefreshUser{UserID: shopID.Hex(), Email: "owner@example.com"}
	result, err := svc.RefreshTokens(context.Background(), "current", user, credential)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if result.Tokens.RefreshToken != "rt3" {
		t.Fatalf("unexpected refresh token %q", result.Tokens.RefreshToken)
	}
	if result.User != user {
		t.Fatalf("unexpected user %+v", result.User)
	}
	if len(keys.rotated) != 1 || keys.rotated[0] != [2]string{"rt3", "current"} {
		t.Fatalf("unexpected rotation %v", keys.rotated)
	}
}

func TestRefreshTokensRejectsAnotherShopsToken(t *testing.T) {
	credential := &keystore.Credential{ShopID: primitive.NewObjectID(), RefreshToken: "mine"}
	otherID := primitive.NewObjectID()
	keys := &stubKeyStore{byShopID: map[primitive.ObjectID]*keystore.Credential{
		credential.ShopID: credential,
		otherID:           {ShopID: otherID, RefreshToken: "theirs"},
	}}
	svc := newTestService(t, &stubShopRepo{}, keys, &stubIssuer{pair: &tokens.Pair{}})

	_, err := svc.RefreshTokens(context.Background(), "theirs", RefreshUser{Email: "owner@example.com"}, credential)
	if err == nil {
		t.Fatal("expected another shop's token to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if len(keys.rotated) != 0 {
		t.Fatal("mismatched token must not rotate")
	}
}

func TestLogoutIsNilSafe(t *testing.T) {
	keys := &stubKeyStore{}
	svc := newTestService(t, &stubShopRepo{}, keys, &stubIssuer{pair: &tokens.Pair{}})

	if err := svc.Logout(context.Background(), nil); err != nil {
		t.Fatalf("logout nil credential: %v", err)
	}
	if len(keys.deleted) != 0 {
		t.Fatal("nil credential must not delete anything")
	}
}

func TestParseShopID(t *testing.T) {
	id := primitive.NewObjectID()
	parsed, err := ParseShopID(" " + id.Hex() + " ")
	if err != nil {
		t.Fatalf("parse shop id: %v", err)
	}
	if parsed != id {
		t.Fatalf("got %s, want %s", parsed.Hex(), id.Hex())
	}

	if _, err := ParseShopID("nope"); err == nil {
		t.Fatal("expected error for malformed id")
	}
}
