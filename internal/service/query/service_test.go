package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubdoor/clubdoor/internal/clock"
	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/repository"
)

type fakeStore struct {
	events    map[int64]domain.Event
	tickets   map[uuid.UUID]domain.Ticket
	lastLimit int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:  make(map[int64]domain.Event),
		tickets: make(map[uuid.UUID]domain.Ticket),
	}
}

func (s *fakeStore) GetEvent(_ context.Context, id int64) (*domain.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (s *fakeStore) LiveEvent(context.Context) (*domain.Event, error) {
	for _, e := range s.events {
		if e.Live {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeStore) ListEvents(_ context.Context, limit, _ int) ([]domain.Event, error) {
	s.lastLimit = limit
	out := make([]domain.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	return out, nil
}

func (s *fakeStore) Availability(_ context.Context, eventID int64) (*domain.Availability, error) {
	e, ok := s.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.Availability{
		EventID:   eventID,
		Capacity:  e.Capacity,
		Sold:      e.TicketsSold,
		Remaining: e.Capacity - e.TicketsSold,
	}, nil
}

func (s *fakeStore) TicketByID(_ context.Context, id uuid.UUID) (*domain.Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *fakeStore) TicketFor(_ context.Context, eventID int64, email string) (*domain.Ticket, error) {
	for _, t := range s.tickets {
		if t.EventID == eventID && t.Email == email {
			tt := t
			return &tt, nil
		}
	}
	return nil, repository.ErrNotFound
}

func TestGetEventPublic(t *testing.T) {
	t.Parallel()

	release := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	mystery := domain.Event{
		ID:        1,
		Title:     "Secret Headliner",
		Location:  "Frost Amphitheater",
		Capacity:  500,
		ReleaseAt: release,
		Mystery:   true,
	}

	t.Run("mystery event is masked before release", func(t *testing.T) {
		store := newFakeStore()
		store.events[1] = mystery
		svc := New(store, nil, clock.NewFixed(release.Add(-time.Hour)), Config{})

		e, err := svc.GetEventPublic(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "???", e.Title)
		assert.Empty(t, e.Location)
		assert.Equal(t, 500, e.Capacity)
	})

	t.Run("mystery event is revealed at release", func(t *testing.T) {
		store := newFakeStore()
		store.events[1] = mystery
		svc := New(store, nil, clock.NewFixed(release), Config{})

		e, err := svc.GetEventPublic(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Secret Headliner", e.Title)
		assert.Equal(t, "Frost Amphitheater", e.Location)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc := New(newFakeStore(), nil, clock.NewFixed(release), Config{})

		_, err := svc.GetEventPublic(context.Background(), 404)
		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestListEventsPublic(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("applies default and max page size", func(t *testing.T) {
		store := newFakeStore()
		svc := New(store, nil, clock.NewFixed(now), Config{DefaultEventPage: 50, MaxEventPage: 200})

		_, err := svc.ListEventsPublic(context.Background(), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 50, store.lastLimit)

		_, err = svc.ListEventsPublic(context.Background(), 10_000, 0)
		require.NoError(t, err)
		assert.Equal(t, 200, store.lastLimit)
	})

	t.Run("masks unannounced mystery events in the list", func(t *testing.T) {
		store := newFakeStore()
		store.events[1] = domain.Event{
			ID:        1,
			Title:     "Secret Headliner",
			ReleaseAt: now.Add(time.Hour),
			Mystery:   true,
		}
		svc := New(store, nil, clock.NewFixed(now), Config{})

		events, err := svc.ListEventsPublic(context.Background(), 0, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "???", events[0].Title)
	})
}

func TestAvailability(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	store.events[1] = domain.Event{ID: 1, Capacity: 100, TicketsSold: 60}
	svc := New(store, nil, clock.NewFixed(now), Config{})

	a, err := svc.Availability(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, a.Capacity)
	assert.Equal(t, 60, a.Sold)
	assert.Equal(t, 40, a.Remaining)

	_, err = svc.Availability(context.Background(), 404)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestTickets(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	ticket := domain.Ticket{ID: uuid.New(), EventID: 1, Email: "jdoe@stanford.edu"}
	store.tickets[ticket.ID] = ticket
	svc := New(store, nil, clock.NewFixed(now), Config{})

	got, err := svc.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.Email, got.Email)

	_, err = svc.GetTicket(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTicketNotFound)

	got, err = svc.TicketFor(context.Background(), 1, "jdoe@stanford.edu")
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = svc.TicketFor(context.Background(), 1, "ghost@stanford.edu")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestLiveEvent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	svc := New(store, nil, clock.NewFixed(now), Config{})

	_, err := svc.LiveEvent(context.Background())
	assert.ErrorIs(t, err, ErrNoLiveEvent)

	store.events[1] = domain.Event{ID: 1, Live: true}
	e, err := svc.LiveEvent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)
}
