package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

// SeedAccount describes an account that must exist at startup.
type SeedAccount struct {
	Username string
	Password string
	Role     domain.Role
	// DefaultPassword marks a password that ships with the code.
	DefaultPassword bool
}

// Seeder creates the bootstrap accounts when they are missing.
type Seeder struct {
	auth       *AuthService
	production bool
	log        zerolog.Logger
}

func NewSeeder(auth *AuthService, production bool, log zerolog.Logger) *Seeder {
	return &Seeder{auth: auth, production: production, log: log}
}

// Seed creates every missing account. Existing accounts are left untouched,
// including their password and role.
func (s *Seeder) Seed(ctx context.Context, accounts []SeedAccount) error {
	for _, acc := range accounts {
		if acc.Username == "" || acc.Password == "" {
			continue
		}
		if !acc.Role.IsValid() {
			return &domain.ValidationError{Fields: map[string]string{"role": "invalid seed role " + string(acc.Role)}}
		}

		_, err := s.auth.createUser(ctx, acc.Username, acc.Password, acc.Role)
		if errors.Is(err, domain.ErrUserExists) {
			s.log.Debug().Str("username", acc.Username).Msg("seed account already present")
			continue
		}
		if err != nil {
			return err
		}

		ev := s.log.Info()
		if acc.DefaultPassword && s.production {
			ev = s.log.Warn()
		}
		ev.Str("username", acc.Username).
			Str("role", string(acc.Role)).
			Bool("default_password", acc.DefaultPassword).
			Msg("seed account created")
	}
	return nil
}
