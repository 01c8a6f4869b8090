package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/contactdesk/leadgate/internal/core/domain"
	"github.com/contactdesk/leadgate/internal/core/ports"
	"github.com/contactdesk/leadgate/internal/metrics"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// maxOffset bounds page*size; pages past it are empty.
	maxOffset = math.MaxInt32
)

type LeadService struct {
	repo     ports.LeadRepository
	notifier ports.NotificationDispatcher
	log      zerolog.Logger
	now      func() time.Time
}

func NewLeadService(repo ports.LeadRepository, notifier ports.NotificationDispatcher, log zerolog.Logger) *LeadService {
	return &LeadService{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a new lead in status NEW and queues the admin notice, the
// visitor confirmation and the lead.created event. Notification outcome
// never affects the result.
func (s *LeadService) Create(ctx context.Context, in ports.CreateLeadInput) (*domain.Lead, error) {
	if !in.RequestType.IsValid() {
		return nil, domain.NewValidationError("request_type", "request_type must be one of: INFO QUOTE SUPPORT PARTNERSHIP OTHER")
	}

	now := s.now()
	lead := &domain.Lead{
		ID:          uuid.NewString(),
		FullName:    in.FullName,
		Company:     in.Company,
		Email:       in.Email,
		Phone:       in.Phone,
		RequestType: in.RequestType,
		Message:     in.Message,
		Status:      domain.LeadNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		s.log.Error().Err(err).Msg("failed to create lead")
		return nil, fmt.Errorf("create lead: %w", err)
	}

	metrics.LeadsCreatedTotal.WithLabelValues(string(lead.RequestType)).Inc()
	s.log.Info().Str("lead_id", lead.ID).Str("request_type", string(lead.RequestType)).Msg("lead created")

	s.submit(ports.Notification{Kind: ports.NotifyAdmin, Lead: *lead})
	s.submit(ports.Notification{Kind: ports.NotifyVisitor, Lead: *lead})
	s.submit(ports.Notification{Kind: ports.NotifyEvent, Event: ports.EventLeadCreated, Lead: *lead})

	return lead, nil
}

// List returns one page of leads, newest first, optionally restricted to a status.
func (s *LeadService) List(ctx context.Context, in ports.ListLeadsInput) (*ports.LeadPage, error) {
	var status domain.LeadStatus
	if in.Status != "" {
		st, err := domain.ParseLeadStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}

	page, size := in.Page, in.Size
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	offset := maxOffset
	if page <= maxOffset/size {
		offset = page * size
	}

	items, total, err := s.repo.List(ctx, ports.ListLeadsFilter{
		Status: status,
		Offset: offset,
		Limit:  size,
	})
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &ports.LeadPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
	}, nil
}

func (s *LeadService) Get(ctx context.Context, id string) (*domain.Lead, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lead %s: %w", id, err)
	}
	return lead, nil
}

// UpdateStatus overwrites the status of a lead. Any status may follow any other.
func (s *LeadService) UpdateStatus(ctx context.Context, id, status string) (*domain.Lead, error) {
	next, err := domain.ParseLeadStatus(status)
	if err != nil {
		return nil, err
	}

	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update lead %s: %w", id, err)
	}

	prev := lead.Status
	now := s.now()
	if err := s.repo.UpdateStatus(ctx, id, next, now); err != nil {
		return nil, fmt.Errorf("update lead %s: %w", id, err)
	}
	lead.Status = next
	lead.UpdatedAt = now

	metrics.LeadStatusChangesTotal.WithLabelValues(string(prev), string(next)).Inc()
	s.log.Info().Str("lead_id", id).Str("from", string(prev)).Str("to", string(next)).Msg("lead status changed")

	s.submit(ports.Notification{
		Kind:       ports.NotifyEvent,
		Event:      ports.EventLeadStatusChanged,
		Lead:       *lead,
		PrevStatus: prev,
	})
	return lead, nil
}

func (s *LeadService) Delete(ctx context.Context, id string) error {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete lead %s: %w", id, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete lead %s: %w", id, err)
	}

	s.log.Info().Str("lead_id", id).Msg("lead deleted")
	s.submit(ports.Notification{Kind: ports.NotifyEvent, Event: ports.EventLeadDeleted, Lead: *lead})
	return nil
}

// Stats aggregates lead counts. ConversionRate is converted/total*100 and 0
// for an empty store.
func (s *LeadService) Stats(ctx context.Context) (*domain.LeadStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("lead stats: %w", err)
	}

	st := &domain.LeadStats{
		NewLeads:       counts[domain.LeadNew],
		ContactedLeads: counts[domain.LeadContacted],
		ConvertedLeads: counts[domain.LeadConverted],
		LostLeads:      counts[domain.LeadLost],
	}
	st.TotalLeads = st.NewLeads + st.ContactedLeads + st.ConvertedLeads + st.LostLeads
	if st.TotalLeads > 0 {
		st.ConversionRate = float64(st.ConvertedLeads) / float64(st.TotalLeads) * 100
	}
	return st, nil
}

func (s *LeadService) submit(n ports.Notification) {
	if s.notifier == nil {
		return
	}
	n.ID = uuid.NewString()
	n.OccurredAt = s.now()
	if !s.notifier.Submit(n) {
		s.log.Warn().Str("lead_id", n.Lead.ID).Str("kind", string(n.Kind)).Msg("notification not queued")
	}
}
