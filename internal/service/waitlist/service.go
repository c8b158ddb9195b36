package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clubdoor/clubdoor/internal/clock"
	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/effects"
	"github.com/clubdoor/clubdoor/internal/mailer"
	"github.com/clubdoor/clubdoor/internal/metrics"
	"github.com/clubdoor/clubdoor/internal/repository"
)

type Config struct {
	// CloseWindow is how long before the event start joins stop. Defaults
	// to two hours.
	CloseWindow time.Duration
}

// Store is the storage collaborator. Join is a single atomic operation:
// position assignment shares the transaction with the sold-out and
// duplicate checks.
type Store interface {
	Join(ctx context.Context, p repository.JoinWaitlistParams) (*domain.WaitlistEntry, int, error)
	Leave(ctx context.Context, eventID int64, email string) error
	Status(ctx context.Context, eventID int64, email string) (*domain.WaitlistStatus, error)
	Entries(ctx context.Context, eventID int64) ([]domain.WaitlistEntry, error)
}

type Referrals interface {
	Attribute(ctx context.Context, eventID int64, code string, kind domain.AttributionKind) error
}

type EventReader interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
}

type Service struct {
	store     Store
	referrals Referrals
	events    EventReader
	mail      mailer.Mailer
	clock     clock.Clock
	cfg       Config
}

func New(
	store Store,
	referrals Referrals,
	events EventReader,
	mail mailer.Mailer,
	clk clock.Clock,
	cfg Config,
) *Service {
	if cfg.CloseWindow <= 0 {
		cfg.CloseWindow = 2 * time.Hour
	}

	return &Service{
		store:     store,
		referrals: referrals,
		events:    events,
		mail:      mail,
		clock:     clk,
		cfg:       cfg,
	}
}

// Join puts the person at the back of the line once the event is sold out.
// The stamped position is monotonic and never reused; the person's rank is
// derived on read. The confirmation email and referral tally are non-fatal
// side effects.
//
// Returns:
//   - *domain.WaitlistEntry: the stored entry.
//   - int: total entries after the join (the person's rank at join time).
//   - []effects.Failure: non-fatal side effects that did not take.
//   - error: waitlist.ErrEventNotFound, ErrWaitlistClosed, ErrNotSoldOut,
//     ErrAlreadyHasTicket or ErrAlreadyOnWaitlist.
func (s *Service) Join(
	ctx context.Context,
	eventID int64,
	email string,
	referralCode string,
) (*domain.WaitlistEntry, int, []effects.Failure, error) {
	const op = "service.waitlist.Join"

	entry, total, err := s.store.Join(ctx, repository.JoinWaitlistParams{
		EventID:      eventID,
		Email:        email,
		ReferralCode: referralCode,
		Now:          s.clock.Now(),
		CloseWindow:  s.cfg.CloseWindow,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, 0, nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		case errors.Is(err, repository.ErrWaitlistClosed):
			return nil, 0, nil, fmt.Errorf("%s:%w", op, ErrWaitlistClosed)
		case errors.Is(err, repository.ErrNotSoldOut):
			return nil, 0, nil, fmt.Errorf("%s:%w", op, ErrNotSoldOut)
		case errors.Is(err, repository.ErrHasTicket):
			return nil, 0, nil, fmt.Errorf("%s:%w", op, ErrAlreadyHasTicket)
		case errors.Is(err, repository.ErrOnWaitlist):
			return nil, 0, nil, fmt.Errorf("%s:%w", op, ErrAlreadyOnWaitlist)
		}
		return nil, 0, nil, fmt.Errorf("%s:%w", op, err)
	}

	metrics.WaitlistJoins.Inc()

	var fx effects.List
	if referralCode != "" {
		fx.Add("referral_tally", func(ctx context.Context) error {
			return s.referrals.Attribute(ctx, eventID, referralCode, domain.AttributionWaitlist)
		})
	}
	fx.Add("email", func(ctx context.Context) error {
		e, err := s.events.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		return s.mail.SendWaitlistEmail(mailer.WaitlistEmail{
			To:         email,
			EventTitle: e.Title,
			Rank:       total,
			Total:      total,
		})
	})

	failures := fx.Run(ctx)
	for _, f := range failures {
		metrics.DegradedOutcomes.WithLabelValues(f.Name).Inc()
	}

	return entry, total, failures, nil
}

// Leave removes the person's entry. Positions of the others are untouched;
// their derived ranks simply shift down.
//
// Returns:
//   - error: waitlist.ErrNotOnWaitlist if no entry exists.
func (s *Service) Leave(ctx context.Context, eventID int64, email string) error {
	const op = "service.waitlist.Leave"

	if err := s.store.Leave(ctx, eventID, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrNotOnWaitlist)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	metrics.WaitlistLeaves.Inc()

	return nil
}

// Status reports the person's derived rank and the line length. Recomputed
// on every query, never stored.
func (s *Service) Status(ctx context.Context, eventID int64, email string) (*domain.WaitlistStatus, error) {
	const op = "service.waitlist.Status"

	st, err := s.store.Status(ctx, eventID, email)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return st, nil
}

// Entries lists the full line in position order, for the admin console.
func (s *Service) Entries(ctx context.Context, eventID int64) ([]domain.WaitlistEntry, error) {
	const op = "service.waitlist.Entries"

	entries, err := s.store.Entries(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return entries, nil
}
