package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

// RequestLogger writes one line per request. It must run after the
// RequestID middleware so the id is available on the response header. The
// error is handed to the echo error handler here so the logged status is the
// one the client receives.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			var ev *zerolog.Event
			switch {
			case res.Status >= 500:
				ev = base.Error().Err(err)
			case res.Status >= 400:
				ev = base.Warn()
			default:
				ev = base.Info()
			}

			if rid := res.Header().Get(echo.HeaderXRequestID); rid != "" {
				ev = ev.Str("request_id", rid)
			}
			// The principal is attached further down the chain, on a request
			// copy, so read it from the context the handler saw.
			if p, ok := domain.PrincipalFrom(c.Request().Context()); ok {
				ev = ev.Str("username", p.Username)
			}

			ev.Str("method", req.Method).
				Str("path", c.Path()).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("bytes", res.Size).
				Dur("latency", time.Since(start)).
				Msg("request completed")
			return nil
		}
	}
}
