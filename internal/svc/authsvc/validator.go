package authsvc

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/mkrupp/myflix/internal/domain"
)

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

var errPasswordTooLong = errors.New("Password must be at most 72 bytes") //nolint:stylecheck

//nolint:gochecknoglobals
var (
	usernameRules = []validation.Rule{
		validation.Required.Error("Username is required"),
		validation.RuneLength(5, 0).Error("Username must be at least 5 characters"),
		is.Alphanumeric.Error("Username contains non-alphanumeric characters - not allowed."),
	}
	passwordRules = []validation.Rule{
		validation.Required.Error("Password is required"),
		validation.By(func(value interface{}) error {
			if s, _ := value.(string); len(s) > MaxPasswordBytes {
				return errPasswordTooLong
			}

			return nil
		}),
	}
	emailRules = []validation.Rule{
		validation.Required.Error("Email is required"),
		is.Email.Error("Email is invalid"),
	}
	birthDateRules = []validation.Rule{
		validation.Date(domain.DateLayout).Error("Birth date must be formatted as YYYY-MM-DD"),
	}
)

// check runs every rule on value and records each failure, so one response
// lists all problems of a field instead of only the first.
func check(report *domain.ValidationError, field string, value any, rules []validation.Rule) {
	for _, rule := range rules {
		if err := validation.Validate(value, rule); err != nil {
			report.Add(field, err.Error())
		}
	}
}

// ValidateRegistration checks a registration payload before anything is hashed or stored.
// Returns a *domain.ValidationError listing every failed rule, or nil.
func ValidateRegistration(reg domain.Registration) error {
	var report domain.ValidationError

	check(&report, "username", reg.Username, usernameRules)
	check(&report, "password", reg.Password, passwordRules)
	check(&report, "email", reg.Email, emailRules)
	check(&report, "birthDate", reg.BirthDate, birthDateRules)

	return report.Err()
}

// ValidateProfilePatch applies the registration rules to the fields present in patch.
func ValidateProfilePatch(patch domain.ProfilePatch) error {
	var report domain.ValidationError

	if patch.Username != nil {
		check(&report, "username", *patch.Username, usernameRules)
	}

	if patch.Password != nil {
		check(&report, "password", *patch.Password, passwordRules)
	}

	if patch.Email != nil {
		check(&report, "email", *patch.Email, emailRules)
	}

	if patch.BirthDate != nil {
		check(&report, "birthDate", *patch.BirthDate, birthDateRules)
	}

	return report.Err()
}
