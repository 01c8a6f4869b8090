package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/contactdesk/leadgate/internal/core/domain"
	"github.com/contactdesk/leadgate/internal/metrics"
)

type policyKind int

const (
	policyAuthenticated policyKind = iota
	policyPublic
	policyRole
)

// Policy is the access requirement of a route.
type Policy struct {
	kind policyKind
	role domain.Role
}

// Public lets every request through, anonymous or not.
func Public() Policy { return Policy{kind: policyPublic} }

// Authenticated requires any principal.
func Authenticated() Policy { return Policy{kind: policyAuthenticated} }

// Role requires a principal holding exactly role. There is no hierarchy:
// ADMIN does not satisfy Role(USER).
func Role(role domain.Role) Policy { return Policy{kind: policyRole, role: role} }

func (p Policy) String() string {
	switch p.kind {
	case policyPublic:
		return "PUBLIC"
	case policyRole:
		return "ROLE(" + string(p.role) + ")"
	default:
		return "AUTHENTICATED"
	}
}

// Check returns nil when principal satisfies p, domain.ErrUnauthorized when
// a principal is required but absent and domain.ErrForbidden for a wrong role.
func (p Policy) Check(principal domain.Principal, ok bool) error {
	switch p.kind {
	case policyPublic:
		return nil
	case policyAuthenticated:
		if !ok {
			return domain.ErrUnauthorized
		}
		return nil
	default:
		if !ok {
			return domain.ErrUnauthorized
		}
		if principal.Role != p.role {
			return domain.ErrForbidden
		}
		return nil
	}
}

// Rule binds a path pattern, and optionally a method, to a policy.
//
// Patterns are absolute paths. A ":name" segment matches exactly one path
// segment and a trailing "**" matches the prefix itself and anything below
// it, so "/**" matches every path. An empty Method matches any method.
type Rule struct {
	Method  string
	Pattern string
	Policy  Policy
}

type segmentKind int

const (
	segLiteral segmentKind = iota
	segParam
)

type segment struct {
	kind  segmentKind
	value string
}

type compiledRule struct {
	Rule
	segments []segment
	wildcard bool
	literals int
	params   int
	order    int
}

// Guard enforces a rule table after Authenticate has run. The most specific
// matching rule wins; a request that matches no rule needs authentication.
type Guard struct {
	rules []compiledRule
	log   zerolog.Logger
}

// NewGuard compiles rules. It fails on malformed patterns.
func NewGuard(rules []Rule, log zerolog.Logger) (*Guard, error) {
	g := &Guard{log: log}
	for i, r := range rules {
		cr, err := compileRule(r, i)
		if err != nil {
			return nil, err
		}
		g.rules = append(g.rules, cr)
	}
	return g, nil
}

func compileRule(r Rule, order int) (compiledRule, error) {
	if !strings.HasPrefix(r.Pattern, "/") {
		return compiledRule{}, fmt.Errorf("guard: pattern %q must start with /", r.Pattern)
	}
	cr := compiledRule{Rule: r, order: order}
	cr.Method = strings.ToUpper(r.Method)

	parts := splitPath(r.Pattern)
	for i, p := range parts {
		switch {
		case p == "**":
			if i != len(parts)-1 {
				return compiledRule{}, fmt.Errorf("guard: ** must be the last segment in %q", r.Pattern)
			}
			cr.wildcard = true
		case strings.HasPrefix(p, ":"):
			cr.segments = append(cr.segments, segment{kind: segParam, value: p[1:]})
			cr.params++
		case strings.Contains(p, "*"):
			return compiledRule{}, fmt.Errorf("guard: unsupported wildcard in %q", r.Pattern)
		default:
			cr.segments = append(cr.segments, segment{kind: segLiteral, value: p})
			cr.literals++
		}
	}
	return cr, nil
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func (r compiledRule) matches(method string, parts []string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if r.wildcard {
		if len(parts) < len(r.segments) {
			return false
		}
	} else if len(parts) != len(r.segments) {
		return false
	}
	for i, s := range r.segments {
		if s.kind == segLiteral && s.value != parts[i] {
			return false
		}
	}
	return true
}

// class ranks the pattern shape: exact paths over parameterised paths over
// wildcards.
func (r compiledRule) class() int {
	switch {
	case r.wildcard:
		return 0
	case r.params > 0:
		return 1
	default:
		return 2
	}
}

// moreSpecific reports whether r beats o. Declaration order breaks ties.
func (r compiledRule) moreSpecific(o compiledRule) bool {
	if r.class() != o.class() {
		return r.class() > o.class()
	}
	if r.literals != o.literals {
		return r.literals > o.literals
	}
	if (r.Method != "") != (o.Method != "") {
		return r.Method != ""
	}
	return r.order < o.order
}

// Resolve returns the policy that applies to method and path.
func (g *Guard) Resolve(method, path string) Policy {
	parts := splitPath(path)
	method = strings.ToUpper(method)

	var best *compiledRule
	for i := range g.rules {
		r := &g.rules[i]
		if !r.matches(method, parts) {
			continue
		}
		if best == nil || r.moreSpecific(*best) {
			best = r
		}
	}
	if best == nil {
		return Authenticated()
	}
	return best.Policy
}

// Middleware returns the echo middleware enforcing the rule table.
func (g *Guard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			policy := g.Resolve(req.Method, req.URL.Path)
			principal, ok := domain.PrincipalFrom(req.Context())

			if err := policy.Check(principal, ok); err != nil {
				reason := "unauthenticated"
				if ok {
					reason = "forbidden"
				}
				metrics.GuardDenialsTotal.WithLabelValues(reason).Inc()
				g.log.Debug().
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Str("policy", policy.String()).
					Str("username", principal.Username).
					Msg("access denied")
				return err
			}
			return next(c)
		}
	}
}
