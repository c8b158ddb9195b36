package waitlist

import "errors"

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrWaitlistClosed    = errors.New("waitlist closed")
	ErrNotSoldOut        = errors.New("event not sold out")
	ErrAlreadyHasTicket  = errors.New("person already holds a ticket")
	ErrAlreadyOnWaitlist = errors.New("person already on waitlist")
	ErrNotOnWaitlist     = errors.New("person not on waitlist")
)
