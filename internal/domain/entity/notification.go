package entity

import "time"

// Notification dispatch states
const (
	NotificationPending = "PENDING"
	NotificationSent    = "SENT"
	NotificationFailed  = "FAILED"
)

// Notification is an audit row for one role-targeted dispatch attempt. Dispatch
// is best-effort; the row records the outcome without affecting the offer.
type Notification struct {
	ID        int64      `json:"id"`
	OfferID   string     `json:"offer_id"`
	Roles     string     `json:"roles"` // comma-separated role list
	Subject   string     `json:"subject"`
	Status    string     `json:"status"`
	ErrorMsg  string     `json:"error_msg,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
