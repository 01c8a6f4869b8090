package ports

import (
	"context"
	"time"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

// NotificationKind selects the sender that handles a notification.
type NotificationKind string

const (
	NotifyAdmin   NotificationKind = "admin_notice"
	NotifyVisitor NotificationKind = "visitor_confirmation"
	NotifyEvent   NotificationKind = "lead_event"
)

// Lead lifecycle event names carried by NotifyEvent notifications.
const (
	EventLeadCreated       = "lead.created"
	EventLeadStatusChanged = "lead.status_changed"
	EventLeadDeleted       = "lead.deleted"
)

// Notification is a best-effort side effect of a lead operation.
type Notification struct {
	ID         string
	Kind       NotificationKind
	Event      string // set for NotifyEvent
	Lead       domain.Lead
	PrevStatus domain.LeadStatus // set for EventLeadStatusChanged
	OccurredAt time.Time
}

// NotificationDispatcher accepts notifications without waiting for delivery.
// Submit reports whether the notification was queued; it never blocks.
type NotificationDispatcher interface {
	Submit(n Notification) bool
}

// NotificationSender delivers one notification. Errors are absorbed by the
// dispatcher.
type NotificationSender interface {
	Send(ctx context.Context, n Notification) error
}
