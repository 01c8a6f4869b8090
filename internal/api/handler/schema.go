package handler

import (
	"time"

	"github.com/contactdesk/leadgate/internal/core/domain"
	"github.com/contactdesk/leadgate/internal/core/ports"
)

// errorResponse is the error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

// credentialsRequest is shared by register and login. Older clients send
// the login name as "email".
type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r credentialsRequest) login() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

type userResponse struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ExpiresIn int64  `json:"expires_in"` // seconds
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// --- Leads ---

type contactRequest struct {
	FullName    string `json:"full_name"    validate:"required,notblank,max=100"`
	Company     string `json:"company"      validate:"max=200"`
	Email       string `json:"email"        validate:"required,notblank,email"`
	Phone       string `json:"phone"        validate:"max=50"`
	RequestType string `json:"request_type" validate:"required"`
	Message     string `json:"message"      validate:"required,notblank,min=10"`
}

type contactResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type leadResponse struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	Company     string    `json:"company,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	RequestType string    `json:"request_type"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalPages int   `json:"total_pages"`
}

type leadListResponse struct {
	Data       []leadResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type leadStatsResponse struct {
	TotalLeads     int64   `json:"total_leads"`
	NewLeads       int64   `json:"new_leads"`
	ContactedLeads int64   `json:"contacted_leads"`
	ConvertedLeads int64   `json:"converted_leads"`
	LostLeads      int64   `json:"lost_leads"`
	ConversionRate float64 `json:"conversion_rate"`
}

func toLeadResponse(l *domain.Lead) leadResponse {
	return leadResponse{
		ID:          l.ID,
		FullName:    l.FullName,
		Company:     l.Company,
		Email:       l.Email,
		Phone:       l.Phone,
		RequestType: string(l.RequestType),
		Message:     l.Message,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toLeadListResponse(p *ports.LeadPage) leadListResponse {
	data := make([]leadResponse, 0, len(p.Items))
	for _, l := range p.Items {
		data = append(data, toLeadResponse(l))
	}
	return leadListResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      p.Total,
			Page:       p.Page,
			Size:       p.Size,
			TotalPages: p.TotalPages,
		},
	}
}

func toLeadStatsResponse(s *domain.LeadStats) leadStatsResponse {
	return leadStatsResponse{
		TotalLeads:     s.TotalLeads,
		NewLeads:       s.NewLeads,
		ContactedLeads: s.ContactedLeads,
		ConvertedLeads: s.ConvertedLeads,
		LostLeads:      s.LostLeads,
		ConversionRate: s.ConversionRate,
	}
}
