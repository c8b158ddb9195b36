package httpgin

import (
	"time"

	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/effects"
)

type RequestTicketRequest struct {
	Email        string `json:"email" binding:"required,email"`
	ReferralCode string `json:"referral_code"`
}

type IssueAdminTicketRequest struct {
	Email string `json:"email" binding:"required,email"`
	Type  string `json:"type" binding:"omitempty,oneof=STANDARD VIP"`
}

type TicketResponse struct {
	TicketID     string            `json:"ticket_id"`
	EventID      int64             `json:"event_id"`
	Email        string            `json:"email"`
	Type         domain.TicketType `json:"type"`
	ReferralCode string            `json:"referral_code,omitempty"`
	Scanned      bool              `json:"scanned"`
	Degraded     []string          `json:"degraded,omitempty"`
}

type JoinWaitlistRequest struct {
	Email        string `json:"email" binding:"required,email"`
	ReferralCode string `json:"referral_code"`
}

type JoinWaitlistResponse struct {
	Position int64    `json:"position"`
	Rank     int      `json:"rank"`
	Total    int      `json:"total"`
	Degraded []string `json:"degraded,omitempty"`
}

type WaitlistStatusResponse struct {
	OnWaitlist bool `json:"on_waitlist"`
	Rank       int  `json:"rank,omitempty"`
	Total      int  `json:"total"`
}

type ScanRequest struct {
	TicketID string `json:"ticket_id"`
	Identity string `json:"identity"`
	EventID  int64  `json:"event_id"`
	Operator string `json:"operator"`
}

type ScanResponse struct {
	Status       string            `json:"status"` // admitted | already_scanned
	TicketID     string            `json:"ticket_id"`
	EventID      int64             `json:"event_id"`
	Email        string            `json:"email"`
	Type         domain.TicketType `json:"type"`
	ScanTime     *time.Time        `json:"scan_time,omitempty"`
	ScanOperator string            `json:"scan_operator,omitempty"`
	Degraded     []string          `json:"degraded,omitempty"`
}

type CreateEventRequest struct {
	Title     string `json:"title" binding:"required"`
	Location  string `json:"location"`
	Capacity  int    `json:"capacity" binding:"required,gt=0"`
	ReleaseAt string `json:"release_at" binding:"required"`
	StartsAt  string `json:"starts_at" binding:"required"`
	DoorsAt   string `json:"doors_at"`
	Mystery   bool   `json:"mystery"`
}

type CreateEventResponse struct {
	EventID int64 `json:"event_id"`
}

type RecomputeResponse struct {
	Records int `json:"records"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func degradedNames(failures []effects.Failure) []string {
	if len(failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(failures))
	for _, f := range failures {
		names = append(names, f.Name)
	}
	return names
}

func ticketResponse(t *domain.Ticket, failures []effects.Failure) TicketResponse {
	return TicketResponse{
		TicketID:     t.ID.String(),
		EventID:      t.EventID,
		Email:        t.Email,
		Type:         t.Type,
		ReferralCode: t.ReferralCode,
		Scanned:      t.Scanned,
		Degraded:     degradedNames(failures),
	}
}

func scanResponse(res *domain.ScanResult, failures []effects.Failure) ScanResponse {
	status := "admitted"
	if res.AlreadyScanned {
		status = "already_scanned"
	}

	return ScanResponse{
		Status:       status,
		TicketID:     res.Ticket.ID.String(),
		EventID:      res.EventID,
		Email:        res.Ticket.Email,
		Type:         res.Ticket.Type,
		ScanTime:     res.ScanTime,
		ScanOperator: res.ScanOperator,
		Degraded:     degradedNames(failures),
	}
}
