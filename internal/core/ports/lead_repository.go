package ports

import (
	"context"
	"time"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

// ListLeadsFilter carries the paging parameters for LeadRepository.List.
// Results are always ordered by created_at descending.
type ListLeadsFilter struct {
	Status domain.LeadStatus // empty = all statuses
	Offset int
	Limit  int
}

// LeadRepository is the lead store boundary. Every mutating call is a
// single atomic store operation.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	// FindByID returns domain.ErrLeadNotFound when absent.
	FindByID(ctx context.Context, id string) (*domain.Lead, error)
	// List returns a page of leads matching filter and the total match count.
	List(ctx context.Context, filter ListLeadsFilter) ([]*domain.Lead, int64, error)
	// UpdateStatus returns domain.ErrLeadNotFound when absent.
	UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, updatedAt time.Time) error
	// Delete returns domain.ErrLeadNotFound when absent.
	Delete(ctx context.Context, id string) error
	// CountByStatus returns the number of leads per status. Statuses with no
	// leads may be missing from the map.
	CountByStatus(ctx context.Context) (map[domain.LeadStatus]int64, error)
}
