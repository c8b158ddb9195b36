package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/clubdoor/clubdoor/internal/domain"
)

// IssueTicketParams carries one admission request into the storage layer.
// The whole check-and-write sequence it describes runs as a single
// serializable operation.
type IssueTicketParams struct {
	EventID      int64
	Email        string
	Type         domain.TicketType
	ReferralCode string
	Now          time.Time

	// RequesterCode is the requester's own derived code. A referral
	// matching it is rejected during referral resolution, after the
	// event, sale-window and duplicate checks have had their say.
	RequesterCode string

	// BypassDuplicate lifts the one-ticket-per-person check. Only the
	// admin VIP path sets it.
	BypassDuplicate bool
}

// JoinWaitlistParams carries one waitlist join. CloseWindow is how long
// before the event start the waitlist stops accepting entries.
type JoinWaitlistParams struct {
	EventID      int64
	Email        string
	ReferralCode string
	Now          time.Time
	CloseWindow  time.Duration
}

// ScanParams identifies a ticket either directly by ID or by the holder's
// email within an event.
type ScanParams struct {
	TicketID *uuid.UUID
	Email    string
	EventID  int64
	Operator string
	Now      time.Time
}
