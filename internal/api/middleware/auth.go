package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/contactdesk/leadgate/internal/core/domain"
	"github.com/contactdesk/leadgate/internal/core/ports"
)

const bearerScheme = "Bearer"

// Authenticate attaches a domain.Principal to the request context when the
// request carries a valid bearer token for a known user. It never rejects a
// request: every failure leaves the request anonymous and access decisions
// are left to Guard.
func Authenticate(verifier ports.TokenVerifier, resolver ports.IdentityResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}

			username, ok := verifier.Verify(token)
			if !ok {
				return next(c)
			}

			req := c.Request()
			principal, err := resolver.Resolve(req.Context(), username)
			if err != nil {
				if !errors.Is(err, domain.ErrUserNotFound) {
					log.Warn().Err(err).Str("username", username).Msg("identity lookup failed, continuing anonymously")
				}
				return next(c)
			}

			c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), *principal)))
			return next(c)
		}
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-sensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != bearerScheme {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
