package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/NorrinRad01/narrative/internal/errs"
	"github.com/NorrinRad01/narrative/internal/limiter"
	"github.com/NorrinRad01/narrative/internal/model"
	"github.com/NorrinRad01/narrative/internal/repository"
)

type fakeUsers struct {
	byEmail map[string]*model.User

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byEmail == nil {
		f.byEmail = map[string]*model.User{}
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return errs.ErrAlreadyExists
	}
	for _, other := range f.byEmail {
		if other.Username == u.Username {
			return errs.ErrAlreadyExists
		}
	}
	cpy := *u
	f.byEmail[u.Email] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

func TestAuth_Register_Validation(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byEmail: map[string]*model.User{}}
	s := NewAuthService(users, []byte("k"), time.Minute, &fakeLimiter{allowOK: true})
	ctx := context.Background()

	cases := []RegisterInput{
		{},
		{Email: "a@x.com", Username: "alice"},                           // no password
		{Email: "not-an-email", Username: "alice", Password: "secret1"}, // malformed email
		{Email: "a x@x.com", Username: "alice", Password: "secret1"},    // whitespace in email
		{Email: "a@x.com", Username: "alice", Password: "short"},        // < 6 chars
	}
	for _, in := range cases {
		if _, _, err := s.Register(ctx, in); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("Register(%+v): want ErrValidation, got %v", in, err)
		}
	}
}

func TestAuth_Register_TokenResolvesToCreatedUser(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byEmail: map[string]*model.User{}}
	key := []byte("signing-key")
	s := NewAuthService(users, key, time.Hour, &fakeLimiter{allowOK: true})

	u, tok, err := s.Register(context.Background(), RegisterInput{
		Email: "a@x.com", Username: "alice", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == uuid.Nil || u.Name != "alice" {
		t.Fatalf("bad user: %+v", u)
	}
	if len(u.PasswordHash) == 0 || string(u.PasswordHash) == "secret1" {
		t.Fatalf("password stored raw or missing")
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tok.AccessToken, &claims, func(*jwt.Token) (any, error) { return key, nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Subject != u.ID.String() {
		t.Fatalf("token subject %q, want created user %q", claims.Subject, u.ID)
	}
}

func TestAuth_Register_Duplicate(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byEmail: map[string]*model.User{}}
	s := NewAuthService(users, []byte("k"), time.Minute, &fakeLimiter{allowOK: true})
	ctx := context.Background()

	if _, _, err := s.Register(ctx, RegisterInput{Email: "a@x.com", Username: "alice", Password: "secret1"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, _, err := s.Register(ctx, RegisterInput{Email: "a@x.com", Username: "other", Password: "secret1"}); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists on duplicate email, got %v", err)
	}
	if _, _, err := s.Register(ctx, RegisterInput{Email: "b@x.com", Username: "alice", Password: "secret1"}); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists on duplicate username, got %v", err)
	}
}

func TestAuth_LoginWithIP_RateLimiterAndCreds(t *testing.T) {
	t.Parallel()

	users := &fakeUsers{byEmail: map[string]*model.User{}}
	lim := &fakeLimiter{allowOK: true}
	s := NewAuthService(users, []byte("secret"), 2*time.Minute, lim)
	ctx := context.Background()

	u, _, err := s.Register(ctx, RegisterInput{Email: "a@x.com", Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	lim.allowErr = errors.New("lim-err")
	if _, _, err := s.LoginWithIP(ctx, "a@x.com", "secret1", "1.2.3.4"); err == nil {
		t.Fatalf("want limiter error propagate")
	}
	lim.allowErr = nil

	lim.allowOK = false
	if _, _, err := s.LoginWithIP(ctx, "a@x.com", "secret1", "1.2.3.4"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	lim.allowOK = true

	// Unknown email and wrong password give the same answer.
	if _, _, err := s.LoginWithIP(ctx, "nope@x.com", "secret1", ""); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on unknown email, got %v", err)
	}
	if _, _, err := s.LoginWithIP(ctx, "a@x.com", "almost-secret1", ""); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on wrong password, got %v", err)
	}

	lim.failBlocked = true
	if _, _, err := s.LoginWithIP(ctx, "a@x.com", "wrong", ""); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited on blocked after failure, got %v", err)
	}
	lim.failBlocked = false

	got, tok, err := s.LoginWithIP(ctx, "a@x.com", "secret1", "127.0.0.1")
	if err != nil {
		t.Fatalf("LoginWithIP success: %v", err)
	}
	if tok.AccessToken == "" || tok.ExpiresAt.Before(time.Now()) {
		t.Fatalf("bad token: %+v", tok)
	}
	if got.ID != u.ID {
		t.Fatalf("bad user returned: %+v", got)
	}
	if lim.successCalls == 0 {
		t.Fatalf("expected Success() to be called")
	}
}

func TestAuth_Profile(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byEmail: map[string]*model.User{}}
	s := NewAuthService(users, []byte("k"), time.Minute, &fakeLimiter{allowOK: true})
	ctx := context.Background()

	u, _, err := s.Register(ctx, RegisterInput{Email: "a@x.com", Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := s.Profile(ctx, u.ID)
	if err != nil || got.Email != "a@x.com" {
		t.Fatalf("Profile: %+v, %v", got, err)
	}

	if _, err := s.Profile(ctx, uuid.Nil); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized for nil user id, got %v", err)
	}
	if _, err := s.Profile(ctx, uuid.Must(uuid.NewV4())); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown id, got %v", err)
	}
}
