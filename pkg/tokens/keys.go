package tokens

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

const (
	publicKeyBlock  = "RSA PUBLIC KEY"
	privateKeyBlock = "RSA PRIVATE KEY"
)

// KeyPair holds a PEM-encoded PKCS#1 RSA key pair. Every shop owns its own
// pair: the private key signs that shop's tokens, the public key verifies
// them, so one shop's signing capability cannot forge tokens for another.
type KeyPair struct {
	PublicPEM  string
	PrivatePEM string
}

// GenerateKeyPair creates a fresh RSA key pair with the given modulus size.
func GenerateKeyPair(bits int) (*KeyPair, error) {
	if bits < 2048 {
		return nil, fmt.Errorf("rsa key size must be at least 2048 bits")
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}

	privDER := x509.MarshalPKCS1PrivateKey(key)
	pubDER := x509.MarshalPKCS1PublicKey(&key.PublicKey)

	return &KeyPair{
		PublicPEM:  string(pem.EncodeToMemory(&pem.Block{Type: publicKeyBlock, Bytes: pubDER})),
		PrivatePEM: string(pem.EncodeToMemory(&pem.Block{Type: privateKeyBlock, Bytes: privDER})),
	}, nil
}

// ParsePrivateKey decodes a PEM-encoded PKCS#1 private key.
func ParsePrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("no pem block in private key")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// ParsePublicKey decodes a PEM-encoded PKCS#1 public key.
func ParsePublicKey(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("no pem block in public key")
	}
	key, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return key, nil
}
