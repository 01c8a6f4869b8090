package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/contactdesk/leadgate/internal/core/domain"
	"github.com/contactdesk/leadgate/internal/core/ports"
)

// LeadHandler serves the public contact form and the admin lead endpoints.
type LeadHandler struct {
	service ports.LeadService
}

func NewLeadHandler(service ports.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// Contact handles POST /api/contact.
//
// @Summary      Submit the contact form
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        body  body      contactRequest  true  "Contact form"
// @Success      200   {object}  contactResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/contact [post]
func (h *LeadHandler) Contact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	requestType, err := domain.ParseRequestType(req.RequestType)
	if err != nil {
		return err
	}

	lead, err := h.service.Create(c.Request().Context(), ports.CreateLeadInput{
		FullName:    req.FullName,
		Company:     req.Company,
		Email:       req.Email,
		Phone:       req.Phone,
		RequestType: requestType,
		Message:     req.Message,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, contactResponse{
		Message: "Thank you! Your message has been sent. We will get back to you soon.",
		ID:      lead.ID,
	})
}

// List handles GET /api/admin/leads.
//
// @Summary      List leads
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "NEW, CONTACTED, CONVERTED or LOST"
// @Param        page    query     int     false  "Page number, starting at 0"
// @Param        size    query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  leadListResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /api/admin/leads [get]
func (h *LeadHandler) List(c echo.Context) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size")
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), ports.ListLeadsInput{
		Status: c.QueryParam("status"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLeadListResponse(result))
}

// Get handles GET /api/admin/leads/:id.
//
// @Summary      Get a lead
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  leadResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/leads/{id} [get]
func (h *LeadHandler) Get(c echo.Context) error {
	lead, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLeadResponse(lead))
}

// UpdateStatus handles PUT /api/admin/leads/:id/status.
//
// @Summary      Change the status of a lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Lead ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  leadResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/admin/leads/{id}/status [put]
func (h *LeadHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	lead, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLeadResponse(lead))
}

// Delete handles DELETE /api/admin/leads/:id.
//
// @Summary      Delete a lead
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/leads/{id} [delete]
func (h *LeadHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "lead deleted"})
}

// Stats handles GET /api/admin/leads/stats.
//
// @Summary      Lead statistics
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  leadStatsResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/admin/leads/stats [get]
func (h *LeadHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLeadStatsResponse(stats))
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, name+" must be an integer")
	}
	return n, nil
}
