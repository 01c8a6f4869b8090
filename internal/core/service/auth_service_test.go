package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	copy.ID = user.Username
	r.users[copy.Username] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Exists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.users[username]
	return ok, nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func newTestAuthService(repo *stubUserRepo) *AuthService {
	return NewAuthService(repo, NewTokenService(testSecret, time.Hour), bcrypt.MinCost, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), "alice", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected USER role, got %s", user.Role)
	}
	if user.PasswordHash == "pass123" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	if _, err := svc.Register(context.Background(), "alice", "pass123"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "alice", "other"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	for _, in := range [][2]string{{"", "pass"}, {"alice", ""}} {
		if _, err := svc.Register(context.Background(), in[0], in[1]); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("Register(%q, %q): expected ErrValidation, got %v", in[0], in[1], err)
		}
	}
}

func TestAuthService_Login_RoundTrip(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	tokens := NewTokenService(testSecret, time.Hour)

	if _, err := svc.Register(context.Background(), "alice", "pass123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Login(context.Background(), "alice", "pass123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Username != "alice" || res.Role != domain.RoleUser {
		t.Fatalf("unexpected login result: %+v", res)
	}
	if res.ExpiresIn != time.Hour {
		t.Fatalf("expected 1h lifetime, got %s", res.ExpiresIn)
	}
	if sub, ok := tokens.Verify(res.Token); !ok || sub != "alice" {
		t.Fatalf("issued token does not verify: %q %v", sub, ok)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	if _, err := svc.Register(context.Background(), "alice", "pass123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, unknownErr := svc.Login(context.Background(), "bob", "pass123")
	_, wrongErr := svc.Login(context.Background(), "alice", "nope")

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) || !errors.Is(wrongErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("failure messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestAuthService_Login_RepositoryError(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errors.New("connection reset")
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), "alice", "pass123")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestAuthService_Resolve(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)
	if _, err := svc.Register(context.Background(), "alice", "pass123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	p, err := svc.Resolve(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Username != "alice" || p.Role != domain.RoleUser {
		t.Fatalf("unexpected principal %+v", p)
	}

	// Role changes take effect without a new token.
	repo.users["alice"].Role = domain.RoleAdmin
	p, _ = svc.Resolve(context.Background(), "alice")
	if p.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN after role change, got %s", p.Role)
	}

	if _, err := svc.Resolve(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
