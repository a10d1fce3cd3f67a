package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/shopflow/shopflow-backend/pkg/config"
)

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(config.TokenConfig{
		AccessTTL:  2 * 24 * time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return issuer
}

func testKeyPair(t *testing.T) *KeyPair {
	t.Helper()
	pair, err := GenerateKeyPair(2048)
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	return pair
}

func TestNewIssuerRejectsInvertedTTLs(t *testing.T) {
	_, err := NewIssuer(config.TokenConfig{
		AccessTTL:  7 * 24 * time.Hour,
		RefreshTTL: 2 * 24 * time.Hour,
	})
	if err == nil {
		t.Fatal("expected error when refresh ttl does not exceed access ttl")
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := testIssuer(t)
	pair := testKeyPair(t)

	minted, err := issuer.Issue("656f1d7a0000000000000001", "shop@example.com", pair.PrivatePEM)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if minted.AccessToken == "" || minted.RefreshToken == "" {
		t.Fatal("expected both tokens to be minted")
	}
	if minted.AccessToken == minted.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	for _, token := range []string{minted.AccessToken, minted.RefreshToken} {
		claims, err := Verify(token, pair.PublicPEM)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if claims.UserID != "656f1d7a0000000000000001" {
			t.Fatalf("unexpected userId %q", claims.UserID)
		}
		if claims.Email != "shop@example.com" {
			t.Fatalf("unexpected email %q", claims.Email)
		}
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	issuer := testIssuer(t)
	pair := testKeyPair(t)
	other := testKeyPair(t)

	minted, err := issuer.Issue("u", "e@example.com", pair.PrivatePEM)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := Verify(minted.AccessToken, other.PublicPEM); err == nil {
		t.Fatal("expected verification to fail with a different public key")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	issuer := testIssuer(t)
	pair := testKeyPair(t)

	minted, err := issuer.Issue("u", "e@example.com", pair.PrivatePEM)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(minted.AccessToken, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape %q", minted.AccessToken)
	}
	tampered := parts[0] + ".eyJ1c2VySWQiOiJldmlsIn0." + parts[2]

	if _, err := Verify(tampered, pair.PublicPEM); err == nil {
		t.Fatal("expected verification to fail for tampered payload")
	}
}

func TestVerifyRejectsGarbagePublicKey(t *testing.T) {
	if _, err := Verify("token", "not a pem block"); err == nil {
		t.Fatal("expected error for malformed public key")
	}
}

func TestGenerateKeyPairRejectsUndersizedModulus(t *testing.T) {
	if _, err := GenerateKeyPair(512); err == nil {
		t.Fatal("expected error for undersized key request")
	}
}

func TestKeyPairPEMRoundTrip(t *testing.T) {
	pair := testKeyPair(t)
	if _, err := ParsePrivateKey(pair.PrivatePEM); err != nil {
		t.Fatalf("parse private key: %v", err)
	}
	if _, err := ParsePublicKey(pair.PublicPEM); err != nil {
		t.Fatalf("parse public key: %v", err)
	}
}
