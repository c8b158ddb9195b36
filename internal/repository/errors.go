package repository

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrCapacityFull    = errors.New("capacity exceeded")
	ErrSalesClosed     = errors.New("sales closed")
	ErrDuplicateTicket = errors.New("duplicate ticket")
	ErrUnknownReferral = errors.New("unknown referral code")
	ErrSelfReferral    = errors.New("self referral")
	ErrNotSoldOut      = errors.New("event not sold out")
	ErrWaitlistClosed  = errors.New("waitlist closed")
	ErrHasTicket       = errors.New("person already holds a ticket")
	ErrOnWaitlist      = errors.New("person already on waitlist")
	ErrEventLive       = errors.New("an event is live")
	ErrNoLiveEvent     = errors.New("no live event")
	ErrWrongEvent      = errors.New("ticket is for a different event")
)
