package authsvc_test

import (
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/myflix/internal/domain"
	"github.com/mkrupp/myflix/internal/svc/authsvc"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeClock is a settable time source.
type fakeClock struct {
	m   sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.m.Lock()
	defer c.m.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.m.Lock()
	defer c.m.Unlock()

	c.now = c.now.Add(d)
}

func newTestTokenService(clock *fakeClock) *authsvc.TokenService {
	return authsvc.NewTokenService(authsvc.HMACSigningMaterial([]byte(testSecret)), time.Hour, "myflix", clock.Now)
}

func TestTokenService_RoundTrip(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	svc := newTestTokenService(clock)

	token, issued, err := svc.Issue("alice1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if !issued.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
		t.Errorf("Issue() exp = %v, want %v", issued.ExpiresAt, clock.Now().Add(time.Hour))
	}

	clock.Advance(time.Hour - time.Second)

	identity, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if identity.Username != "alice1" {
		t.Errorf("Parse() username = %v, want %v", identity.Username, "alice1")
	}

	if !identity.ExpiresAt.Equal(issued.ExpiresAt) {
		t.Errorf("Parse() exp = %v, want %v", identity.ExpiresAt, issued.ExpiresAt)
	}
}

func TestTokenService_Expiry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		advance time.Duration
		wantErr error
	}{
		{name: "just before expiry", advance: time.Hour - time.Second, wantErr: nil},
		{name: "at expiry", advance: time.Hour, wantErr: domain.ErrAuthTokenExpired},
		{name: "after expiry", advance: 2 * time.Hour, wantErr: domain.ErrAuthTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clock := newFakeClock()
			svc := newTestTokenService(clock)

			token, _, err := svc.Issue("alice1")
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}

			clock.Advance(tt.advance)

			_, err = svc.Parse(token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr != nil && errors.Is(err, domain.ErrInvalidAuthToken) {
				t.Errorf("Parse() error = %v, expired token must not be reported as invalid", err)
			}
		})
	}
}

func TestTokenService_TamperedSignature(t *testing.T) {
	t.Parallel()

	svc := newTestTokenService(newFakeClock())

	token, _, err := svc.Issue("alice1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	dot := strings.LastIndex(token, ".")
	signingInput, encodedSig := token[:dot], token[dot+1:]

	t.Run("decoded bytes", func(t *testing.T) {
		t.Parallel()

		sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
		if err != nil {
			t.Fatalf("decode signature: %v", err)
		}

		for bit := range len(sig) * 8 {
			tampered := make([]byte, len(sig))
			copy(tampered, sig)
			tampered[bit/8] ^= 1 << (bit % 8)

			forged := signingInput + "." + base64.RawURLEncoding.EncodeToString(tampered)

			if _, err := svc.Parse(forged); !errors.Is(err, domain.ErrInvalidAuthToken) {
				t.Fatalf("Parse() with bit %d flipped: error = %v, wantErr %v", bit, err, domain.ErrInvalidAuthToken)
			}
		}
	})

	// The last character of a 32-byte signature carries two unused bits;
	// flipping those must not yield an accepted token either.
	t.Run("encoded characters", func(t *testing.T) {
		t.Parallel()

		for i := range len(encodedSig) {
			for bit := range 8 {
				tampered := []byte(encodedSig)
				tampered[i] ^= 1 << bit

				forged := signingInput + "." + string(tampered)

				if _, err := svc.Parse(forged); !errors.Is(err, domain.ErrInvalidAuthToken) {
					t.Fatalf("Parse() with char %d bit %d flipped (%q->%q): error = %v, wantErr %v",
						i, bit, encodedSig[i], tampered[i], err, domain.ErrInvalidAuthToken)
				}
			}
		}
	})
}

func TestTokenService_Rejects(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	svc := newTestTokenService(clock)

	sign := func(method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
		t.Helper()

		signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}

		return signed
	}

	valid := jwt.RegisteredClaims{
		Issuer:    "myflix",
		Subject:   "alice1",
		IssuedAt:  jwt.NewNumericDate(clock.Now()),
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}

	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"

	noExpiry := valid
	noExpiry.ExpiresAt = nil

	noSubject := valid
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "invalid-token"},
		{name: "empty", token: ""},
		{name: "wrong issuer", token: sign(jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer)},
		{name: "missing expiry", token: sign(jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{name: "missing subject", token: sign(jwt.SigningMethodHS256, []byte(testSecret), noSubject)},
		{name: "other algorithm", token: sign(jwt.SigningMethodHS512, []byte(testSecret), valid)},
		{name: "other secret", token: sign(jwt.SigningMethodHS256, []byte(strings.Repeat("x", 32)), valid)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := svc.Parse(tt.token); !errors.Is(err, domain.ErrInvalidAuthToken) {
				t.Errorf("Parse() error = %v, wantErr %v", err, domain.ErrInvalidAuthToken)
			}
		})
	}
}

func TestTokenService_RS256(t *testing.T) {
	t.Parallel()

	key, err := authsvc.GeneratePrivateKey(authsvc.DefaultKeySize)
	if err != nil {
		t.Fatalf("GeneratePrivateKey() error = %v", err)
	}

	clock := newFakeClock()
	svc := authsvc.NewTokenService(authsvc.RSASigningMaterial(key), time.Hour, "myflix", clock.Now)

	token, _, err := svc.Issue("alice1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	identity, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if identity.Username != "alice1" {
		t.Errorf("Parse() username = %v, want %v", identity.Username, "alice1")
	}

	hmacSvc := newTestTokenService(clock)
	if _, err := hmacSvc.Parse(token); !errors.Is(err, domain.ErrInvalidAuthToken) {
		t.Errorf("HS256 service accepted RS256 token: error = %v", err)
	}
}

func TestNewSigningMaterial(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     authsvc.AuthConfig
		wantAlg string
		wantErr error
	}{
		{name: "secret", cfg: authsvc.AuthConfig{SigningSecret: testSecret}, wantAlg: "HS256"},
		{name: "short secret", cfg: authsvc.AuthConfig{SigningSecret: "short"}, wantErr: domain.ErrNoSigningKey},
		{name: "nothing configured", cfg: authsvc.AuthConfig{}, wantErr: domain.ErrNoSigningKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			material, err := authsvc.NewSigningMaterial(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewSigningMaterial() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && material.Method.Alg() != tt.wantAlg {
				t.Errorf("NewSigningMaterial() alg = %v, want %v", material.Method.Alg(), tt.wantAlg)
			}
		})
	}
}
