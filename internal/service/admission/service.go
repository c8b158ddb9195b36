package admission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clubdoor/clubdoor/internal/clock"
	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/effects"
	"github.com/clubdoor/clubdoor/internal/mailer"
	"github.com/clubdoor/clubdoor/internal/metrics"
	"github.com/clubdoor/clubdoor/internal/repository"
)

// Store is the storage collaborator: both methods are single atomic
// operations on the shared event/ticket rows.
type Store interface {
	IssueTicket(ctx context.Context, p repository.IssueTicketParams) (*domain.Ticket, error)
	CancelTicket(ctx context.Context, ticketID uuid.UUID, email string) (int64, error)
}

type Referrals interface {
	Attribute(ctx context.Context, eventID int64, code string, kind domain.AttributionKind) error
}

type EventReader interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
}

// Notifier fans an admission-affecting change out to cache invalidation
// and the admin console. Failures are collected as non-fatal effects.
type Notifier interface {
	Changed(ctx context.Context, eventID int64, kind string) error
}

type Service struct {
	store     Store
	referrals Referrals
	events    EventReader
	mail      mailer.Mailer
	notifier  Notifier
	clock     clock.Clock
}

func New(
	store Store,
	referrals Referrals,
	events EventReader,
	mail mailer.Mailer,
	notifier Notifier,
	clk clock.Clock,
) *Service {
	return &Service{
		store:     store,
		referrals: referrals,
		events:    events,
		mail:      mail,
		notifier:  notifier,
		clock:     clk,
	}
}

// RequestTicket issues a STANDARD ticket for the person, running the full
// precondition chain atomically in storage. On success the referral tally
// and console notification run as non-fatal side effects and are reported
// in the returned failure list.
//
// The confirmation email is the one side effect treated as fatal: when it
// fails the ticket still exists but the error returned is
// admission.ErrEmailDelivery, together with the issued ticket.
//
// Returns:
//   - *domain.Ticket: the issued ticket (also set alongside ErrEmailDelivery).
//   - []effects.Failure: non-fatal side effects that did not take.
//   - error: admission.ErrEventNotFound, ErrSalesClosed, ErrDuplicateTicket,
//     ErrSelfReferral, ErrInvalidReferral, ErrCapacityExceeded or
//     ErrEmailDelivery.
func (s *Service) RequestTicket(
	ctx context.Context,
	eventID int64,
	email string,
	referralCode string,
) (*domain.Ticket, []effects.Failure, error) {
	const op = "service.admission.RequestTicket"

	t, err := s.store.IssueTicket(ctx, repository.IssueTicketParams{
		EventID:       eventID,
		Email:         email,
		Type:          domain.TicketStandard,
		ReferralCode:  referralCode,
		RequesterCode: domain.ReferralCodeFor(email),
		Now:           s.clock.Now(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s:%w", op, s.translateIssueErr(err))
	}

	metrics.TicketsIssued.WithLabelValues(string(t.Type)).Inc()

	var fx effects.List
	if referralCode != "" {
		fx.Add("referral_tally", func(ctx context.Context) error {
			return s.referrals.Attribute(ctx, eventID, referralCode, domain.AttributionTicket)
		})
	}
	fx.Add("notify", func(ctx context.Context) error {
		return s.notifier.Changed(ctx, eventID, "ticket_issued")
	})

	failures := fx.Run(ctx)
	for _, f := range failures {
		metrics.DegradedOutcomes.WithLabelValues(f.Name).Inc()
	}

	if err := s.sendTicketEmail(ctx, t); err != nil {
		metrics.DegradedOutcomes.WithLabelValues("email").Inc()
		failures = append(failures, effects.Failure{Name: "email", Err: err})
		return t, failures, fmt.Errorf("%s:%w", op, ErrEmailDelivery)
	}

	return t, failures, nil
}

// IssueAdminTicket issues a ticket on behalf of the admin console. The type
// defaults to VIP; a VIP ticket bypasses the one-ticket-per-person check,
// any other type keeps it. No confirmation email is sent.
func (s *Service) IssueAdminTicket(
	ctx context.Context,
	eventID int64,
	email string,
	typ domain.TicketType,
) (*domain.Ticket, []effects.Failure, error) {
	const op = "service.admission.IssueAdminTicket"

	if typ == "" {
		typ = domain.TicketVIP
	}

	t, err := s.store.IssueTicket(ctx, repository.IssueTicketParams{
		EventID:         eventID,
		Email:           email,
		Type:            typ,
		Now:             s.clock.Now(),
		BypassDuplicate: typ == domain.TicketVIP,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s:%w", op, s.translateIssueErr(err))
	}

	metrics.TicketsIssued.WithLabelValues(string(t.Type)).Inc()

	var fx effects.List
	fx.Add("notify", func(ctx context.Context) error {
		return s.notifier.Changed(ctx, eventID, "ticket_issued")
	})

	failures := fx.Run(ctx)
	for _, f := range failures {
		metrics.DegradedOutcomes.WithLabelValues(f.Name).Inc()
	}

	return t, failures, nil
}

// CancelTicket deletes the holder's ticket and frees the seat. Rejected
// while any event is live; the lock is global, not per event. The freed
// seat is announced so the waitlist front can claim it through the normal
// request path; no ticket is auto-issued.
//
// Returns:
//   - []effects.Failure: non-fatal side effects that did not take.
//   - error: admission.ErrTicketNotFound or ErrEventLive.
func (s *Service) CancelTicket(ctx context.Context, ticketID uuid.UUID, email string) ([]effects.Failure, error) {
	const op = "service.admission.CancelTicket"

	eventID, err := s.store.CancelTicket(ctx, ticketID, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		case errors.Is(err, repository.ErrEventLive):
			return nil, fmt.Errorf("%s:%w", op, ErrEventLive)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	metrics.TicketsCancelled.Inc()

	var fx effects.List
	fx.Add("notify", func(ctx context.Context) error {
		return s.notifier.Changed(ctx, eventID, "seat_freed")
	})

	failures := fx.Run(ctx)
	for _, f := range failures {
		metrics.DegradedOutcomes.WithLabelValues(f.Name).Inc()
	}

	return failures, nil
}

func (s *Service) sendTicketEmail(ctx context.Context, t *domain.Ticket) error {
	e, err := s.events.GetEvent(ctx, t.EventID)
	if err != nil {
		return err
	}

	return s.mail.SendTicketEmail(mailer.TicketEmail{
		To:         t.Email,
		EventTitle: e.Title,
		Location:   e.Location,
		StartsAt:   e.StartsAt,
		DoorsAt:    e.DoorsAt,
		TicketID:   t.ID.String(),
		TicketType: t.Type,
	})
}

func (s *Service) translateIssueErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		metrics.AdmissionRejected.WithLabelValues("event_not_found").Inc()
		return ErrEventNotFound
	case errors.Is(err, repository.ErrSalesClosed):
		metrics.AdmissionRejected.WithLabelValues("sales_closed").Inc()
		return ErrSalesClosed
	case errors.Is(err, repository.ErrDuplicateTicket):
		metrics.AdmissionRejected.WithLabelValues("duplicate").Inc()
		return ErrDuplicateTicket
	case errors.Is(err, repository.ErrSelfReferral):
		metrics.AdmissionRejected.WithLabelValues("self_referral").Inc()
		return ErrSelfReferral
	case errors.Is(err, repository.ErrUnknownReferral):
		metrics.AdmissionRejected.WithLabelValues("invalid_referral").Inc()
		return ErrInvalidReferral
	case errors.Is(err, repository.ErrCapacityFull):
		metrics.AdmissionRejected.WithLabelValues("capacity").Inc()
		return ErrCapacityExceeded
	}
	return err
}
