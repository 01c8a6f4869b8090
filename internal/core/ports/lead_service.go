package ports

import (
	"context"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

// CreateLeadInput is the validated contact form.
type CreateLeadInput struct {
	FullName    string
	Company     string
	Email       string
	Phone       string
	RequestType domain.RequestType
	Message     string
}

// ListLeadsInput carries the list endpoint parameters. Page is 0-based.
type ListLeadsInput struct {
	Status string
	Page   int
	Size   int
}

// LeadPage is one page of leads, newest first.
type LeadPage struct {
	Items      []*domain.Lead
	Total      int64
	Page       int
	Size       int
	TotalPages int
}

type LeadService interface {
	Create(ctx context.Context, input CreateLeadInput) (*domain.Lead, error)
	List(ctx context.Context, input ListLeadsInput) (*LeadPage, error)
	Get(ctx context.Context, id string) (*domain.Lead, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Lead, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*domain.LeadStats, error)
}
