package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/contactdesk/leadgate/internal/core/domain"
	"github.com/contactdesk/leadgate/internal/core/ports"
)

type stubLeadService struct {
	createFn func(ctx context.Context, in ports.CreateLeadInput) (*domain.Lead, error)
	listFn   func(ctx context.Context, in ports.ListLeadsInput) (*ports.LeadPage, error)
	getFn    func(ctx context.Context, id string) (*domain.Lead, error)
	updateFn func(ctx context.Context, id, status string) (*domain.Lead, error)
	deleteFn func(ctx context.Context, id string) error
	statsFn  func(ctx context.Context) (*domain.LeadStats, error)
}

func (s *stubLeadService) Create(ctx context.Context, in ports.CreateLeadInput) (*domain.Lead, error) {
	return s.createFn(ctx, in)
}

func (s *stubLeadService) List(ctx context.Context, in ports.ListLeadsInput) (*ports.LeadPage, error) {
	return s.listFn(ctx, in)
}

func (s *stubLeadService) Get(ctx context.Context, id string) (*domain.Lead, error) {
	return s.getFn(ctx, id)
}

func (s *stubLeadService) UpdateStatus(ctx context.Context, id, status string) (*domain.Lead, error) {
	return s.updateFn(ctx, id, status)
}

func (s *stubLeadService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubLeadService) Stats(ctx context.Context) (*domain.LeadStats, error) {
	return s.statsFn(ctx)
}

func sampleLead() *domain.Lead {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Lead{
		ID:          "lead-1",
		FullName:    "Jeanne Martin",
		Email:       "jeanne@example.com",
		RequestType: domain.RequestQuote,
		Message:     "Could you send me a quote?",
		Status:      domain.LeadNew,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func TestLeadHandler_Contact_Success(t *testing.T) {
	stub := &stubLeadService{
		createFn: func(_ context.Context, in ports.CreateLeadInput) (*domain.Lead, error) {
			if in.RequestType != domain.RequestQuote || in.FullName != "Jeanne Martin" {
				t.Fatalf("unexpected input %+v", in)
			}
			return sampleLead(), nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/api/contact",
		`{"full_name":"Jeanne Martin","email":"jeanne@example.com","request_type":"quote","message":"Could you send me a quote?"}`)

	if err := NewLeadHandler(stub).Contact(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp contactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "lead-1" || resp.Message == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLeadHandler_Contact_Validation(t *testing.T) {
	stub := &stubLeadService{
		createFn: func(context.Context, ports.CreateLeadInput) (*domain.Lead, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	cases := map[string]struct {
		body  string
		field string
	}{
		"missing name":  {`{"email":"a@b.co","request_type":"INFO","message":"long enough text"}`, "full_name"},
		"bad email":     {`{"full_name":"A","email":"nope","request_type":"INFO","message":"long enough text"}`, "email"},
		"short message": {`{"full_name":"A","email":"a@b.co","request_type":"INFO","message":"hi"}`, "message"},
		"bad type":      {`{"full_name":"A","email":"a@b.co","request_type":"CALLBACK","message":"long enough text"}`, "request_type"},
		"blank name":    {`{"full_name":"   ","email":"a@b.co","request_type":"QUOTE","message":"long enough text"}`, "full_name"},
		"blank message": {`{"full_name":"A","email":"a@b.co","request_type":"QUOTE","message":"          "}`, "message"},
		"blank email":   {`{"full_name":"A","email":"  ","request_type":"QUOTE","message":"long enough text"}`, "email"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newJSONContext(http.MethodPost, "/api/contact", tc.body)
			err := NewLeadHandler(stub).Contact(c)

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tc.field]; !ok {
				t.Fatalf("expected error on %s, got %v", tc.field, ve.Fields)
			}
		})
	}
}

func TestLeadHandler_List(t *testing.T) {
	stub := &stubLeadService{
		listFn: func(_ context.Context, in ports.ListLeadsInput) (*ports.LeadPage, error) {
			if in.Status != "CONTACTED" || in.Page != 1 || in.Size != 5 {
				t.Fatalf("unexpected input %+v", in)
			}
			return &ports.LeadPage{Items: []*domain.Lead{sampleLead()}, Total: 6, Page: 1, Size: 5, TotalPages: 2}, nil
		},
	}
	c, rec := newJSONContext(http.MethodGet, "/api/admin/leads?status=CONTACTED&page=1&size=5", "")

	if err := NewLeadHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp leadListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Pagination.TotalPages != 2 || resp.Pagination.Total != 6 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLeadHandler_List_BadPage(t *testing.T) {
	c, _ := newJSONContext(http.MethodGet, "/api/admin/leads?page=two", "")
	if err := NewLeadHandler(&stubLeadService{}).List(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestLeadHandler_Get_NotFound(t *testing.T) {
	stub := &stubLeadService{
		getFn: func(_ context.Context, id string) (*domain.Lead, error) {
			return nil, domain.ErrLeadNotFound
		},
	}
	c, _ := newJSONContext(http.MethodGet, "/api/admin/leads/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := NewLeadHandler(stub).Get(c); !errors.Is(err, domain.ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestLeadHandler_UpdateStatus(t *testing.T) {
	stub := &stubLeadService{
		updateFn: func(_ context.Context, id, status string) (*domain.Lead, error) {
			if id != "lead-1" || status != "CONVERTED" {
				t.Fatalf("unexpected args %s %s", id, status)
			}
			l := sampleLead()
			l.Status = domain.LeadConverted
			return l, nil
		},
	}
	c, rec := newJSONContext(http.MethodPut, "/api/admin/leads/lead-1/status", `{"status":"CONVERTED"}`)
	c.SetParamNames("id")
	c.SetParamValues("lead-1")

	if err := NewLeadHandler(stub).UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp leadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "CONVERTED" {
		t.Fatalf("unexpected status %s", resp.Status)
	}
}

func TestLeadHandler_UpdateStatus_MissingStatus(t *testing.T) {
	c, _ := newJSONContext(http.MethodPut, "/api/admin/leads/lead-1/status", `{}`)
	if err := NewLeadHandler(&stubLeadService{}).UpdateStatus(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestLeadHandler_Stats(t *testing.T) {
	stub := &stubLeadService{
		statsFn: func(context.Context) (*domain.LeadStats, error) {
			return &domain.LeadStats{TotalLeads: 4, NewLeads: 3, ConvertedLeads: 1, ConversionRate: 25}, nil
		},
	}
	c, rec := newJSONContext(http.MethodGet, "/api/admin/leads/stats", "")

	if err := NewLeadHandler(stub).Stats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total_leads"] != float64(4) || resp["conversion_rate"] != float64(25) {
		t.Fatalf("unexpected stats %+v", resp)
	}
}

func TestLeadHandler_Delete(t *testing.T) {
	var deleted string
	stub := &stubLeadService{
		deleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	c, rec := newJSONContext(http.MethodDelete, "/api/admin/leads/lead-1", "")
	c.SetParamNames("id")
	c.SetParamValues("lead-1")

	if err := NewLeadHandler(stub).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if deleted != "lead-1" || rec.Code != http.StatusOK {
		t.Fatalf("unexpected result: deleted=%q code=%d", deleted, rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	h := NewHealthHandler(map[string]DependencyCheck{
		"store": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Dependencies["store"].Status != "ok" || resp.Dependencies["redis"].Status != "unhealthy" {
		t.Fatalf("unexpected dependencies %+v", resp.Dependencies)
	}
}
