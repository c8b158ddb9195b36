package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clubdoor/clubdoor/internal/clock"
	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/repository"
	redisrepo "github.com/clubdoor/clubdoor/internal/repository/redis"
)

type Config struct {
	EventSummaryTTL  time.Duration
	AvailabilityTTL  time.Duration
	DefaultEventPage int
	MaxEventPage     int
}

// Store is the storage collaborator for the side-effect-free read paths.
type Store interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	LiveEvent(ctx context.Context) (*domain.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, error)
	Availability(ctx context.Context, eventID int64) (*domain.Availability, error)
	TicketByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	TicketFor(ctx context.Context, eventID int64, email string) (*domain.Ticket, error)
}

type Service struct {
	store Store
	cache *redisrepo.Cache
	clock clock.Clock
	cfg   Config
}

func New(store Store, cache *redisrepo.Cache, clk clock.Clock, cfg Config) *Service {
	if cfg.EventSummaryTTL <= 0 {
		cfg.EventSummaryTTL = 60 * time.Second
	}

	if cfg.AvailabilityTTL <= 0 {
		cfg.AvailabilityTTL = 15 * time.Second
	}

	if cfg.DefaultEventPage <= 0 {
		cfg.DefaultEventPage = 50
	}

	if cfg.MaxEventPage <= 0 {
		cfg.MaxEventPage = 200
	}

	return &Service{
		store: store,
		cache: cache,
		clock: clk,
		cfg:   cfg,
	}
}

// GetEvent retrieves an event through the cache.
//
// Returns:
//   - error: query.ErrEventNotFound if the event is not found.
func (s *Service) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "service.query.GetEvent"

	key := redisrepo.KeyEventSummary(id)

	event, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.EventSummaryTTL,
		func(ctx context.Context) (domain.Event, error) {
			e, err := s.store.GetEvent(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Event{}, ErrEventNotFound
				}

				return domain.Event{}, err
			}

			return *e, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &event, nil
}

// GetEventPublic is GetEvent with mystery masking applied: identity fields
// of an unannounced mystery event are hidden from the public read path.
func (s *Service) GetEventPublic(ctx context.Context, id int64) (*domain.Event, error) {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	masked := maskMystery(*e, s.clock.Now())
	return &masked, nil
}

// ListEventsPublic lists events in start order with mystery masking.
func (s *Service) ListEventsPublic(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	const op = "service.query.ListEventsPublic"

	if limit <= 0 {
		limit = s.cfg.DefaultEventPage
	}

	if limit > s.cfg.MaxEventPage {
		limit = s.cfg.MaxEventPage
	}

	events, err := s.store.ListEvents(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	for i := range events {
		events[i] = maskMystery(events[i], now)
	}

	return events, nil
}

// Availability reads the ledger counters through the cache. The public
// remaining figure excludes VIP tickets; the totals do not.
//
// Returns:
//   - error: query.ErrEventNotFound if the event is not found.
func (s *Service) Availability(ctx context.Context, eventID int64) (*domain.Availability, error) {
	const op = "service.query.Availability"

	key := redisrepo.KeyEventAvailability(eventID)

	a, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.AvailabilityTTL,
		func(ctx context.Context) (domain.Availability, error) {
			av, err := s.store.Availability(ctx, eventID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Availability{}, ErrEventNotFound
				}

				return domain.Availability{}, err
			}

			return *av, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &a, nil
}

// LiveEvent returns the event currently open for scanning.
//
// Returns:
//   - error: query.ErrNoLiveEvent when no event is live.
func (s *Service) LiveEvent(ctx context.Context) (*domain.Event, error) {
	const op = "service.query.LiveEvent"

	e, err := s.store.LiveEvent(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrNoLiveEvent)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return e, nil
}

// GetTicket retrieves a ticket by ID. The transport layer verifies the
// requester owns it.
//
// Returns:
//   - error: query.ErrTicketNotFound if the ticket is not found.
func (s *Service) GetTicket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "service.query.GetTicket"

	t, err := s.store.TicketByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

// TicketFor retrieves the person's own ticket for an event.
//
// Returns:
//   - error: query.ErrTicketNotFound if the person holds no ticket.
func (s *Service) TicketFor(ctx context.Context, eventID int64, email string) (*domain.Ticket, error) {
	const op = "service.query.TicketFor"

	t, err := s.store.TicketFor(ctx, eventID, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

func maskMystery(e domain.Event, now time.Time) domain.Event {
	if e.Announced(now) {
		return e
	}

	e.Title = "???"
	e.Location = ""
	return e
}
