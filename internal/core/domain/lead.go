package domain

import (
	"strings"
	"time"
)

// LeadStatus is the back-office state of a lead. Any status may follow any
// other; only membership in the enumeration is enforced.
type LeadStatus string

const (
	LeadNew       LeadStatus = "NEW"
	LeadContacted LeadStatus = "CONTACTED"
	LeadConverted LeadStatus = "CONVERTED"
	LeadLost      LeadStatus = "LOST"
)

// LeadStatuses lists every status in display order.
var LeadStatuses = []LeadStatus{LeadNew, LeadContacted, LeadConverted, LeadLost}

// RequestType tags what the visitor is asking for.
type RequestType string

const (
	RequestInfo        RequestType = "INFO"
	RequestQuote       RequestType = "QUOTE"
	RequestSupport     RequestType = "SUPPORT"
	RequestPartnership RequestType = "PARTNERSHIP"
	RequestOther       RequestType = "OTHER"
)

var requestTypes = []RequestType{RequestInfo, RequestQuote, RequestSupport, RequestPartnership, RequestOther}

func (s LeadStatus) IsValid() bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (t RequestType) IsValid() bool {
	for _, v := range requestTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseLeadStatus accepts any letter case ("contacted", "CONTACTED").
func ParseLeadStatus(s string) (LeadStatus, error) {
	st := LeadStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", NewValidationError("status", "status must be one of: NEW CONTACTED CONVERTED LOST")
	}
	return st, nil
}

// ParseRequestType accepts any letter case.
func ParseRequestType(s string) (RequestType, error) {
	rt := RequestType(strings.ToUpper(strings.TrimSpace(s)))
	if !rt.IsValid() {
		return "", NewValidationError("request_type", "request_type must be one of: INFO QUOTE SUPPORT PARTNERSHIP OTHER")
	}
	return rt, nil
}

// Lead is a contact request submitted through the public form.
type Lead struct {
	ID          string      `json:"id" bson:"_id"`
	FullName    string      `json:"full_name" bson:"full_name"`
	Company     string      `json:"company,omitempty" bson:"company,omitempty"`
	Email       string      `json:"email" bson:"email"`
	Phone       string      `json:"phone,omitempty" bson:"phone,omitempty"`
	RequestType RequestType `json:"request_type" bson:"request_type"`
	Message     string      `json:"message" bson:"message"`
	Status      LeadStatus  `json:"status" bson:"status"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at"`
}

// LeadStats aggregates lead counts per status.
type LeadStats struct {
	TotalLeads     int64
	NewLeads       int64
	ContactedLeads int64
	ConvertedLeads int64
	LostLeads      int64
	ConversionRate float64
}
