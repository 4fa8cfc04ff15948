package authsvc_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkrupp/myflix/internal/domain"
	"github.com/mkrupp/myflix/internal/svc/authsvc"
)

func TestSigningKeyFile(t *testing.T) {
	t.Parallel()

	key, err := authsvc.GeneratePrivateKey(authsvc.DefaultKeySize)
	if err != nil {
		t.Fatalf("GeneratePrivateKey() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "signing.pem")

	if err := authsvc.WritePrivateKey(path, key); err != nil {
		t.Fatalf("WritePrivateKey() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat key file: %v", err)
	}

	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key file mode = %o, want %o", perm, 0o600)
	}

	if err := authsvc.WritePrivateKey(path, key); err == nil {
		t.Error("WritePrivateKey() overwrote an existing file")
	}

	material, err := authsvc.NewSigningMaterial(authsvc.AuthConfig{SigningKeyFile: path})
	if err != nil {
		t.Fatalf("NewSigningMaterial() error = %v", err)
	}

	if material.Method.Alg() != "RS256" {
		t.Errorf("NewSigningMaterial() alg = %v, want RS256", material.Method.Alg())
	}

	_, err = authsvc.NewSigningMaterial(authsvc.AuthConfig{SigningKeyFile: filepath.Join(t.TempDir(), "missing.pem")})
	if !errors.Is(err, domain.ErrNoSigningKey) {
		t.Errorf("NewSigningMaterial() error = %v, wantErr %v", err, domain.ErrNoSigningKey)
	}
}
