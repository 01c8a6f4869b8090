package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

// DemoHandler serves three fixed routes, one per access policy, for trying
// out tokens by hand.
type DemoHandler struct{}

func NewDemoHandler() *DemoHandler {
	return &DemoHandler{}
}

type principalResponse struct {
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Public handles GET /public.
//
// @Summary  Reachable without a token
// @Tags     demo
// @Produce  json
// @Success  200  {object}  principalResponse
// @Router   /public [get]
func (h *DemoHandler) Public(c echo.Context) error {
	return c.JSON(http.StatusOK, withPrincipal(c, "public content"))
}

// Private handles GET /private.
//
// @Summary   Requires any valid token
// @Tags      demo
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  principalResponse
// @Failure   401  {object}  errorResponse
// @Router    /private [get]
func (h *DemoHandler) Private(c echo.Context) error {
	return c.JSON(http.StatusOK, withPrincipal(c, "private content"))
}

// Admin handles GET /admin.
//
// @Summary   Requires an ADMIN token
// @Tags      demo
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  principalResponse
// @Failure   401  {object}  errorResponse
// @Failure   403  {object}  errorResponse
// @Router    /admin [get]
func (h *DemoHandler) Admin(c echo.Context) error {
	return c.JSON(http.StatusOK, withPrincipal(c, "admin content"))
}

func withPrincipal(c echo.Context, msg string) principalResponse {
	res := principalResponse{Message: msg}
	if p, ok := domain.PrincipalFrom(c.Request().Context()); ok {
		res.Username = p.Username
		res.Role = string(p.Role)
	}
	return res
}
