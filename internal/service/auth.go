package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"portfolio-chat/internal/logging"
	"portfolio-chat/internal/models"
	"portfolio-chat/internal/repositories"
)

// BcryptCost is the work factor for stored admin passwords.
const BcryptCost = 12

// Claims is the JWT payload of an admin session token.
type Claims struct {
	AdminID  string `json:"adminId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	Admin     models.AdminIdentity `json:"admin"`
}

// AuthConfig holds the token parameters of an AuthService.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// AuthService issues and verifies admin session tokens.
type AuthService struct {
	admins repositories.AdminRepository
	secret []byte
	ttl    time.Duration
	issuer string
	cost   int
	now    func() time.Time
}

// NewAuthService builds an AuthService. An empty secret is replaced by a
// random per-process one, so tokens do not survive a restart.
func NewAuthService(admins repositories.AdminRepository, cfg AuthConfig) (*AuthService, error) {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		logging.L().Warn().Msg("JWT_SECRET is not set, using a random secret; admin tokens will not survive a restart")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		admins: admins,
		secret: secret,
		ttl:    ttl,
		issuer: cfg.Issuer,
		cost:   BcryptCost,
		now:    time.Now,
	}, nil
}

// Login checks username and password and issues a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, validationError("username and password are required")
	}

	admin, err := s.admins.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return LoginResult{}, ErrUnauthorized
		}
		return LoginResult{}, fmt.Errorf("load admin: %w", err)
	}
	if !admin.IsActive {
		return LoginResult{}, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrUnauthorized
	}

	token, expiresAt, err := s.issue(admin)
	if err != nil {
		return LoginResult{}, err
	}
	logging.Ctx(ctx).Info().Str(logging.FieldAdminID, admin.ID).Msg("admin logged in")
	return LoginResult{Token: token, ExpiresAt: expiresAt, Admin: admin.Identity()}, nil
}

// Verify validates a token and returns the admin it was issued to. The admin
// must still exist and be active.
func (s *AuthService) Verify(ctx context.Context, token string) (models.AdminIdentity, error) {
	if token == "" {
		return models.AdminIdentity{}, ErrUnauthorized
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.AdminID == "" {
		return models.AdminIdentity{}, ErrUnauthorized
	}

	admin, err := s.admins.GetAdmin(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return models.AdminIdentity{}, ErrUnauthorized
		}
		return models.AdminIdentity{}, fmt.Errorf("load admin: %w", err)
	}
	if !admin.IsActive {
		return models.AdminIdentity{}, ErrUnauthorized
	}
	return admin.Identity(), nil
}

// CreateAdmin stores a new admin account. An empty email defaults to
// <username>@admin.local and is stored as is; a supplied email must look
// like an address.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password, email string) (models.AdminIdentity, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return models.AdminIdentity{}, validationError("username and password are required")
	}
	switch {
	case email == "":
		email = username + "@admin.local"
	case !emailPattern.MatchString(email):
		return models.AdminIdentity{}, validationError("invalid email address")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.AdminIdentity{}, fmt.Errorf("hash password: %w", err)
	}

	admin, err := s.admins.CreateAdmin(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.AdminIdentity{}, fmt.Errorf("%w: admin username or email already exists", ErrConflict)
		}
		return models.AdminIdentity{}, fmt.Errorf("create admin: %w", err)
	}
	logging.Ctx(ctx).Info().Str(logging.FieldAdminID, admin.ID).Str("username", admin.Username).Msg("admin created")
	return admin.Identity(), nil
}

// Setup creates the first admin. It fails with ErrConflict once any admin
// exists.
func (s *AuthService) Setup(ctx context.Context, username, password, email string) (models.AdminIdentity, error) {
	exists, err := s.admins.HasAnyAdmin(ctx)
	if err != nil {
		return models.AdminIdentity{}, fmt.Errorf("check admins: %w", err)
	}
	if exists {
		return models.AdminIdentity{}, fmt.Errorf("%w: admin already exists", ErrConflict)
	}
	return s.CreateAdmin(ctx, username, password, email)
}

func (s *AuthService) issue(admin models.Admin) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}
