package ports

import (
	"context"
	"time"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	ExpiresAt time.Time
	Username  string
	Role      domain.Role
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// IdentityResolver maps a token subject to the current principal.
// It returns domain.ErrUserNotFound when the account no longer exists.
type IdentityResolver interface {
	Resolve(ctx context.Context, username string) (*domain.Principal, error)
}

// TokenVerifier checks a bearer token and returns its subject.
// It never fails loudly: any defect yields ok == false.
type TokenVerifier interface {
	Verify(token string) (subject string, ok bool)
}

// TokenIssuer signs a token for subject.
type TokenIssuer interface {
	Issue(subject string) (token string, expiresAt time.Time, err error)
	Lifetime() time.Duration
}
