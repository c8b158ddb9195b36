package admission

import "errors"

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrSalesClosed      = errors.New("sales closed")
	ErrDuplicateTicket  = errors.New("person already holds a ticket")
	ErrSelfReferral     = errors.New("self-referral forbidden")
	ErrInvalidReferral  = errors.New("referral code does not resolve")
	ErrCapacityExceeded = errors.New("event is sold out")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrEventLive        = errors.New("cancellation disabled while an event is live")

	// ErrEmailDelivery is returned when the ticket was issued but the
	// confirmation email failed. The ticket row persists; callers report
	// the request as failed anyway. Known sharp edge, kept deliberately.
	ErrEmailDelivery = errors.New("ticket issued but confirmation email failed")
)
