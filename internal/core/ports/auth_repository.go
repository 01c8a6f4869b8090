package ports

import (
	"context"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

// UserRepository is the credential store boundary.
type UserRepository interface {
	// FindByUsername returns domain.ErrUserNotFound when no user matches exactly.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	// Create returns domain.ErrUserExists on a duplicate username.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
