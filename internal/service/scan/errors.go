package scan

import "errors"

var (
	ErrNoLiveEvent   = errors.New("no live event")
	ErrInvalidTicket = errors.New("invalid ticket")
	ErrWrongEvent    = errors.New("ticket is for a different event")
	ErrBadIdentifier = errors.New("ticket id or identity required")
)
