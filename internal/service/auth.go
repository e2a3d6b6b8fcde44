// Package service contains application services for authentication, books and chapters.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/NorrinRad01/narrative/internal/crypto"
	"github.com/NorrinRad01/narrative/internal/errs"
	"github.com/NorrinRad01/narrative/internal/limiter"
	"github.com/NorrinRad01/narrative/internal/model"
	"github.com/NorrinRad01/narrative/internal/repository"
)

const minPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterInput carries a new account request.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	Name     string
}

// AuthService defines registration, login and profile operations.
type AuthService interface {
	// Register creates a new user and mints an access token for it.
	Register(ctx context.Context, in RegisterInput) (*model.User, model.Tokens, error)
	// LoginWithIP applies rate limiting and authenticates the user.
	LoginWithIP(ctx context.Context, email, password, ip string) (*model.User, model.Tokens, error)
	// Profile loads the authenticated user's account.
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type AuthServiceImpl struct {
	users    repository.UserRepository
	signKey  []byte
	tokenTTL time.Duration
	lim      limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, tokenTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, tokenTTL: tokenTTL, lim: lim}
}

// Register validates the input, stores a salted password hash and issues a token.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (*model.User, model.Tokens, error) {
	if in.Email == "" || in.Password == "" || in.Username == "" {
		return nil, model.Tokens{}, fmt.Errorf("%w: email, password and username are required", errs.ErrValidation)
	}
	if !emailRe.MatchString(in.Email) {
		return nil, model.Tokens{}, fmt.Errorf("%w: malformed email", errs.ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return nil, model.Tokens{}, fmt.Errorf("%w: password must be at least %d characters", errs.ErrValidation, minPasswordLen)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return nil, model.Tokens{}, err
	}
	hash, err := pkgcrypto.HashPassword(in.Password)
	if err != nil {
		return nil, model.Tokens{}, err
	}
	name := in.Name
	if name == "" {
		name = in.Username
	}

	u := &model.User{
		ID:           uid,
		Email:        in.Email,
		Username:     in.Username,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, model.Tokens{}, err
	}

	tok, err := s.issueAccessToken(u.ID)
	if err != nil {
		return nil, model.Tokens{}, err
	}
	return u, tok, nil
}

// LoginWithIP authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (*model.User, model.Tokens, error) {
	if email == "" || password == "" {
		return nil, model.Tokens{}, fmt.Errorf("%w: email and password are required", errs.ErrValidation)
	}
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return nil, model.Tokens{}, err
	}
	if !allowed {
		return nil, model.Tokens{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword(password, u.PasswordHash) {
		// Record failure; if threshold reached, return rate-limited.
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return nil, model.Tokens{}, errs.ErrRateLimited
		}
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return nil, model.Tokens{}, err
		}
		// Unknown email and wrong password map to the same answer.
		return nil, model.Tokens{}, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email, ipHash)

	tok, err := s.issueAccessToken(u.ID)
	if err != nil {
		return nil, model.Tokens{}, err
	}
	return u, tok, nil
}

// Profile loads the user's account by ID.
func (s *AuthServiceImpl) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthorized
	}
	return s.users.GetByID(ctx, userID)
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (model.Tokens, error) {
	now := time.Now()
	exp := now.Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, err
}
