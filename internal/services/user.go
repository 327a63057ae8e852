package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dcode-ide/apiserver/config"
	"github.com/dcode-ide/apiserver/internal/store"
	"github.com/dcode-ide/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	passwordCost    = 12
	defaultTokenTTL = 24 * time.Hour
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService registers accounts and issues and verifies bearer tokens.
type UserService struct {
	repo     UserRepository
	secret   []byte
	tokenTTL time.Duration
	cost     int
	now      func() time.Time
}

func NewUserService(repo UserRepository, cfg config.AuthConfig) *UserService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &UserService{
		repo:     repo,
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: ttl,
		cost:     passwordCost,
		now:      time.Now,
	}
}

// Register creates an account. The email must not be taken.
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (types.User, error) {
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || password == "" || fullName == "" {
		return types.User{}, fmt.Errorf("%w: email, pwd and fullName are required", ErrValidation)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashed),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		// Lost a race with a concurrent sign-up for the same email.
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrDuplicateEmail
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks the password and returns a signed token for the user.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and pwd are required", ErrValidation)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(user.ID)
}

// Verify checks a token and returns the user id it was issued for. It does
// not check that the user still exists.
func (s *UserService) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// ResolveUser verifies token and loads the user it names.
func (s *UserService) ResolveUser(ctx context.Context, token string) (types.User, error) {
	userID, err := s.Verify(token)
	if err != nil {
		return types.User{}, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) issueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
