package authsvc

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/myflix/internal/domain"
)

// KeyType is the PEM block type for RSA private keys.
const KeyType = "RSA PRIVATE KEY"

// DefaultKeySize is the default RSA key size in bits.
const DefaultKeySize = 2048

// MinSecretLength is the minimum length in bytes of an HMAC signing secret.
const MinSecretLength = 32

// ErrInvalidKey is returned when a PEM file does not hold an RSA private key.
var ErrInvalidKey = errors.New("invalid signing key")

// SigningMaterial is the key pair used to sign and verify tokens.
// It is read-only after construction and safe for concurrent use.
type SigningMaterial struct {
	Method    jwt.SigningMethod
	SignKey   any
	VerifyKey any
}

// NewSigningMaterial picks the signing method from the configuration:
// an HMAC secret (HS256) wins over an RSA key file (RS256).
// Returns domain.ErrNoSigningKey when neither is usable.
func NewSigningMaterial(cfg AuthConfig) (SigningMaterial, error) {
	switch {
	case cfg.SigningSecret != "":
		if len(cfg.SigningSecret) < MinSecretLength {
			return SigningMaterial{}, fmt.Errorf("%w: secret shorter than %d bytes", domain.ErrNoSigningKey, MinSecretLength)
		}

		return HMACSigningMaterial([]byte(cfg.SigningSecret)), nil
	case cfg.SigningKeyFile != "":
		key, err := LoadPrivateKey(cfg.SigningKeyFile)
		if err != nil {
			return SigningMaterial{}, errors.Join(domain.ErrNoSigningKey, err)
		}

		return RSASigningMaterial(key), nil
	default:
		return SigningMaterial{}, domain.ErrNoSigningKey
	}
}

// HMACSigningMaterial signs with HS256.
func HMACSigningMaterial(secret []byte) SigningMaterial {
	return SigningMaterial{
		Method:    jwt.SigningMethodHS256,
		SignKey:   secret,
		VerifyKey: secret,
	}
}

// RSASigningMaterial signs with RS256.
func RSASigningMaterial(key *rsa.PrivateKey) SigningMaterial {
	return SigningMaterial{
		Method:    jwt.SigningMethodRS256,
		SignKey:   key,
		VerifyKey: &key.PublicKey,
	}
}

// DecodePrivateKey reads and decodes a PEM-encoded RSA private key.
// Returns an error if the key cannot be read or is not a valid RSA private key.
func DecodePrivateKey(key io.Reader) (*rsa.PrivateKey, error) {
	buf, err := io.ReadAll(key)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}

	block, _ := pem.Decode(buf)
	if block == nil {
		return nil, fmt.Errorf("decode key: %w: no PEM block", ErrInvalidKey)
	} else if block.Type != KeyType {
		return nil, fmt.Errorf("decode key: %w: unexpected block %q", ErrInvalidKey, block.Type)
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse key: %w", err)
	}

	return privateKey, nil
}

// GeneratePrivateKey creates a new RSA private key with the specified bit size.
func GeneratePrivateKey(bits int) (*rsa.PrivateKey, error) {
	signingKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	return signingKey, nil
}

// EncodePrivateKey encodes an RSA private key in PEM format.
func EncodePrivateKey(signingKey *rsa.PrivateKey) ([]byte, error) {
	//nolint:exhaustruct
	pemBlock := &pem.Block{
		Type:  KeyType,
		Bytes: x509.MarshalPKCS1PrivateKey(signingKey),
	}

	var buf bytes.Buffer

	if err := pem.Encode(&buf, pemBlock); err != nil {
		return nil, fmt.Errorf("encode key: %w", err)
	}

	return buf.Bytes(), nil
}

// LoadPrivateKey reads an RSA private key from the PEM file at path.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key file: %w", err)
	}
	defer keyFile.Close()

	signingKey, err := DecodePrivateKey(keyFile)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}

	return signingKey, nil
}

// WritePrivateKey stores key PEM-encoded at path, refusing to overwrite an existing file.
func WritePrivateKey(path string, key *rsa.PrivateKey) error {
	keyBytes, err := EncodePrivateKey(key)
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	keyFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}
	defer keyFile.Close()

	if _, err := keyFile.Write(keyBytes); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}

	return nil
}
