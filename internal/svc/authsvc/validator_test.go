package authsvc_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/mkrupp/myflix/internal/domain"
	"github.com/mkrupp/myflix/internal/svc/authsvc"
)

func ptr[T any](v T) *T { return &v }

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		reg        domain.Registration
		wantFields []string
	}{
		{
			name: "valid",
			reg:  domain.Registration{Username: "alice1", Password: "s3cret", Email: "alice@example.com"},
		},
		{
			name: "valid with birth date",
			reg: domain.Registration{
				Username: "alice1", Password: "s3cret", Email: "alice@example.com", BirthDate: "1990-04-01",
			},
		},
		{
			name:       "short username",
			reg:        domain.Registration{Username: "al", Password: "s3cret", Email: "alice@example.com"},
			wantFields: []string{"username"},
		},
		{
			name:       "non-alphanumeric username",
			reg:        domain.Registration{Username: "alice_1", Password: "s3cret", Email: "alice@example.com"},
			wantFields: []string{"username"},
		},
		{
			name:       "missing password",
			reg:        domain.Registration{Username: "alice1", Email: "alice@example.com"},
			wantFields: []string{"password"},
		},
		{
			name:       "overlong password",
			reg:        domain.Registration{Username: "alice1", Password: strings.Repeat("a", 73), Email: "alice@example.com"},
			wantFields: []string{"password"},
		},
		{
			name:       "bad email",
			reg:        domain.Registration{Username: "alice1", Password: "s3cret", Email: "not-an-email"},
			wantFields: []string{"email"},
		},
		{
			name: "bad birth date",
			reg: domain.Registration{
				Username: "alice1", Password: "s3cret", Email: "alice@example.com", BirthDate: "01/04/1990",
			},
			wantFields: []string{"birthDate"},
		},
		{
			name:       "everything wrong at once",
			reg:        domain.Registration{Username: "a!"},
			wantFields: []string{"username", "password", "email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := authsvc.ValidateRegistration(tt.reg)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateRegistration() error = %v", err)
				}

				return
			}

			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateRegistration() error = %v, want *domain.ValidationError", err)
			}

			if len(verr.Fields) != len(tt.wantFields) {
				t.Errorf("ValidateRegistration() fields = %v, want %v", verr.Fields, tt.wantFields)
			}

			for _, field := range tt.wantFields {
				if len(verr.Fields[field]) == 0 {
					t.Errorf("ValidateRegistration() missing error for %q: %v", field, verr.Fields)
				}
			}
		})
	}
}

func TestValidateRegistration_ReportsEveryUsernameProblem(t *testing.T) {
	t.Parallel()

	err := authsvc.ValidateRegistration(domain.Registration{Username: "a_b", Password: "s3cret", Email: "a@b.co"})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ValidateRegistration() error = %v, want *domain.ValidationError", err)
	}

	if got := len(verr.Fields["username"]); got != 2 {
		t.Errorf("username messages = %v, want 2 (length and charset)", verr.Fields["username"])
	}
}

func TestValidateProfilePatch(t *testing.T) {
	t.Parallel()

	if err := authsvc.ValidateProfilePatch(domain.ProfilePatch{}); err != nil {
		t.Errorf("ValidateProfilePatch(empty) error = %v", err)
	}

	if err := authsvc.ValidateProfilePatch(domain.ProfilePatch{Email: ptr("alice@example.org")}); err != nil {
		t.Errorf("ValidateProfilePatch(email) error = %v", err)
	}

	err := authsvc.ValidateProfilePatch(domain.ProfilePatch{Username: ptr("abc"), Password: ptr("")})
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("ValidateProfilePatch() error = %v, wantErr %v", err, domain.ErrValidationFailed)
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) && (len(verr.Fields["username"]) == 0 || len(verr.Fields["password"]) == 0) {
		t.Errorf("ValidateProfilePatch() fields = %v, want username and password", verr.Fields)
	}
}
