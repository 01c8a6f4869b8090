package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/contactdesk/leadgate/internal/core/domain"
	"github.com/contactdesk/leadgate/internal/core/ports"
	"github.com/contactdesk/leadgate/internal/metrics"
)

// AuthService implements registration, login and principal resolution.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenIssuer
	cost   int
	log    zerolog.Logger

	// dummyHash is compared against when the username is unknown so both
	// login failure paths spend a bcrypt comparison.
	dummyHash []byte
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenIssuer, bcryptCost int, log zerolog.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("leadgate:no-such-user"), bcryptCost)
	if err != nil {
		panic(fmt.Sprintf("auth: dummy hash: %v", err))
	}
	return &AuthService{repo: repo, tokens: tokens, cost: bcryptCost, log: log, dummyHash: dummy}
}

// Register stores a new USER account. The username must not exist yet.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"username": "username and password are required",
		}}
	}

	user, err := s.createUser(ctx, username, password, domain.RoleUser)
	switch {
	case errors.Is(err, domain.ErrUserExists):
		metrics.AuthRegistrationsTotal.WithLabelValues("conflict").Inc()
		return nil, err
	case err != nil:
		metrics.AuthRegistrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.AuthRegistrationsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", user.Username).Msg("user registered")
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	exists, err := s.repo.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	// The repository still rejects a concurrent duplicate with ErrUserExists.
	return s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Login checks the credentials and issues a bearer token. Unknown usernames
// and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		metrics.AuthLoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		metrics.AuthLoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthLoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(user.Username)
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	metrics.AuthLoginsTotal.WithLabelValues("success").Inc()
	return &ports.LoginResult{
		Token:     token,
		ExpiresIn: s.tokens.Lifetime(),
		ExpiresAt: exp,
		Username:  user.Username,
		Role:      user.Role,
	}, nil
}

// Resolve loads the current role of username for the auth middleware.
func (s *AuthService) Resolve(ctx context.Context, username string) (*domain.Principal, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &domain.Principal{Username: user.Username, Role: user.Role}, nil
}
