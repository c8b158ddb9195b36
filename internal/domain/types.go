package domain

import (
	"time"

	"github.com/google/uuid"
)

type TicketType string

const (
	TicketStandard TicketType = "STANDARD"
	TicketVIP      TicketType = "VIP"
)

type Event struct {
	ID           int64
	Title        string
	Location     string
	Capacity     int
	TicketsSold  int
	Reserved     int // legacy mirror of TicketsSold, kept for older clients
	ScannedCount int
	ReleaseAt    time.Time
	StartsAt     time.Time
	DoorsAt      time.Time
	Live         bool
	Mystery      bool
	CreatedAt    time.Time
}

// Announced reports whether a mystery event may show its identity fields.
func (e Event) Announced(now time.Time) bool {
	return !e.Mystery || !now.Before(e.ReleaseAt)
}

type Ticket struct {
	ID           uuid.UUID
	EventID      int64
	Email        string
	Type         TicketType
	ReferralCode string
	Scanned      bool
	ScanTime     *time.Time
	ScanOperator string
	CreatedAt    time.Time
}

type WaitlistEntry struct {
	ID           uuid.UUID
	EventID      int64
	Email        string
	Position     int64
	ReferralCode string
	CreatedAt    time.Time
}

// WaitlistStatus is the derived view of a person's place in line. Rank is
// computed on read as 1 + entries with a smaller position; it is never stored.
type WaitlistStatus struct {
	OnWaitlist bool
	Rank       int
	Total      int
}

type ReferralRecord struct {
	ID      int64
	EventID int64
	Code    string
	Count   int
}

type AttributionKind string

const (
	AttributionTicket   AttributionKind = "ticket"
	AttributionWaitlist AttributionKind = "waitlist"
)

// Availability splits the ledger view: Sold/Remaining cover every ticket type,
// PublicSold/PublicRemaining exclude admin-issued VIP tickets so that VIP seats
// never signal a sellout to the public.
type Availability struct {
	EventID         int64
	Capacity        int
	Sold            int
	Remaining       int
	PublicSold      int
	PublicRemaining int
}

type ScanResult struct {
	Ticket         Ticket
	EventID        int64
	AlreadyScanned bool
	ScanTime       *time.Time
	ScanOperator   string
}
