package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidCredentialInput is returned when a password is empty or missing.
	ErrInvalidCredentialInput = errors.New("invalid credential input")
)

// User represents a registered account and its favorite movies.
type User struct {
	ID             int64     `json:"-"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	Email          string    `json:"email"`
	BirthDate      *Date     `json:"birthDate,omitempty"`
	FavoriteMovies []string  `json:"favoriteMovies"`
	CreatedAt      time.Time `json:"-"`
}

// NewUser is the candidate record handed to the credential store on registration.
type NewUser struct {
	Username     string
	PasswordHash string
	Email        string
	BirthDate    *Date
}

// UserUpdate holds the fields to change on an existing user. Nil fields are left untouched.
type UserUpdate struct {
	Username     *string
	PasswordHash *string
	Email        *string
	BirthDate    *Date
}

// IsEmpty reports whether the update would not change anything.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.PasswordHash == nil && u.Email == nil && u.BirthDate == nil
}

// Registration is the client payload for creating an account.
type Registration struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	BirthDate string `json:"birthDate,omitempty"`
}

// ProfilePatch is the client payload for updating an account.
type ProfilePatch struct {
	Username  *string `json:"username,omitempty"`
	Password  *string `json:"password,omitempty"`
	Email     *string `json:"email,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
}

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}
