package authsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/mkrupp/myflix/internal/domain"
	"github.com/mkrupp/myflix/internal/infra/logging"
	"github.com/mkrupp/myflix/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SigningSecret is the HS256 secret; takes precedence over SigningKeyFile
	SigningSecret string `env:"SIGNING_SECRET" envDefault:""`

	// SigningKeyFile is the path to a PEM RSA private key used with RS256
	SigningKeyFile string `env:"SIGNING_KEY_FILE" envDefault:""`

	// TokenTTL is the validity duration of auth tokens
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"168h"` // 7d

	// Issuer is written to and required in every token
	Issuer string `env:"ISSUER" envDefault:"myflix"`

	// BcryptCost is the bcrypt work factor for new password hashes
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// AuthService provides authentication and user management functionality.
// It handles user registration, login, and token validation.
type AuthService struct {
	Config   AuthConfig
	UserRepo user.Repository
	Hasher   PasswordHasher
	Tokens   *TokenService
	Log      logging.Logger
}

// NewAuthService creates a new AuthService with the given user repository factory and configuration.
// Returns an error if no signing key is configured or the user repository cannot be created.
func NewAuthService(repoFactory user.RepositoryFactory, cfg AuthConfig) (*AuthService, error) {
	log := logging.GetLogger("svc.authsvc.auth_service")

	signing, err := NewSigningMaterial(cfg)
	if err != nil {
		return nil, fmt.Errorf("signing material: %w", err)
	}

	userRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &AuthService{
		Config:   cfg,
		UserRepo: userRepo,
		Hasher:   NewBcryptHasher(cfg.BcryptCost),
		Tokens:   NewTokenService(signing, cfg.TokenTTL, cfg.Issuer, nil),
		Log:      log,
	}, nil
}

// RegisterUser validates the registration, hashes the password and stores the new account.
// Returns a *domain.ValidationError for bad input and domain.ErrUserAlreadyExists
// if the username is taken.
func (s *AuthService) RegisterUser(ctx context.Context, reg domain.Registration) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "username", reg.Username))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	if err := ValidateRegistration(reg); err != nil {
		return nil, err
	}

	passwordHash, err := s.Hasher.Hash(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	candidate := domain.NewUser{
		Username:     reg.Username,
		PasswordHash: passwordHash,
		Email:        reg.Email,
	}

	if reg.BirthDate != "" {
		birthDate, err := domain.ParseDate(reg.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("birth date: %w", err)
		}

		candidate.BirthDate = &birthDate
	}

	created, err := s.UserRepo.CreateUser(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

// Login authenticates a user and generates a signed token.
// Unknown usernames and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (_ string, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	u, ok, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	if !ok {
		if burner, isBurner := s.Hasher.(interface{ Burn(string) }); isBurner {
			burner.Burn(password)
		}

		return "", domain.ErrInvalidCredentials
	}

	if !s.Hasher.Verify(password, u.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	token, identity, err := s.Tokens.Issue(u.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	log = log.With(logging.Group("token",
		"exp", identity.ExpiresAt.UTC().Format(time.RFC3339),
		"iat", identity.IssuedAt.UTC().Format(time.RFC3339),
	))

	return token, nil
}

// ValidateToken verifies a token's signature and expiration only.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (identity domain.Identity, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "validate token failed", "error", err)
		}
	}()

	identity, err = s.Tokens.Parse(tokenString)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("parse token: %w", err)
	}

	return identity, nil
}

// Authenticate is the request guard check: it validates the token and resolves its
// subject to a live user. A token whose user has since been deleted or renamed
// fails with domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (domain.Identity, error) {
	identity, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return domain.Identity{}, err
	}

	_, ok, err := s.UserRepo.GetUserByUsername(ctx, identity.Username)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("resolve subject: %w", err)
	} else if !ok {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}

	return identity, nil
}
