package admission

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubdoor/clubdoor/internal/clock"
	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/mailer"
	"github.com/clubdoor/clubdoor/internal/repository"
)

// fakeStore mirrors the storage contract: every check and the counter
// increment happen under one lock, the way the real repo runs them in one
// transaction.
type fakeStore struct {
	mu        sync.Mutex
	event     domain.Event
	tickets   map[uuid.UUID]*domain.Ticket
	referrals map[string]bool
	anyLive   bool
}

func newFakeStore(e domain.Event) *fakeStore {
	return &fakeStore{
		event:     e,
		tickets:   make(map[uuid.UUID]*domain.Ticket),
		referrals: make(map[string]bool),
	}
}

func (s *fakeStore) IssueTicket(_ context.Context, p repository.IssueTicketParams) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.EventID != s.event.ID {
		return nil, repository.ErrNotFound
	}
	if !p.Now.Before(s.event.StartsAt) {
		return nil, repository.ErrSalesClosed
	}
	if !p.BypassDuplicate {
		for _, t := range s.tickets {
			if t.Email == p.Email {
				return nil, repository.ErrDuplicateTicket
			}
		}
	}
	if p.ReferralCode != "" {
		if p.ReferralCode == p.RequesterCode {
			return nil, repository.ErrSelfReferral
		}
		if !s.referrals[p.ReferralCode] {
			return nil, repository.ErrUnknownReferral
		}
	}
	if s.event.TicketsSold >= s.event.Capacity {
		return nil, repository.ErrCapacityFull
	}

	s.event.TicketsSold++
	t := &domain.Ticket{
		ID:           uuid.New(),
		EventID:      p.EventID,
		Email:        p.Email,
		Type:         p.Type,
		ReferralCode: p.ReferralCode,
		CreatedAt:    p.Now,
	}
	s.tickets[t.ID] = t
	return t, nil
}

func (s *fakeStore) CancelTicket(_ context.Context, ticketID uuid.UUID, email string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok || t.Email != email {
		return 0, repository.ErrNotFound
	}
	if s.anyLive {
		return 0, repository.ErrEventLive
	}

	delete(s.tickets, ticketID)
	s.event.TicketsSold--
	return t.EventID, nil
}

func (s *fakeStore) sold() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event.TicketsSold
}

type fakeReferrals struct {
	mu    sync.Mutex
	err   error
	codes []string
	kinds []domain.AttributionKind
}

func (f *fakeReferrals) Attribute(_ context.Context, _ int64, code string, kind domain.AttributionKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.codes = append(f.codes, code)
	f.kinds = append(f.kinds, kind)
	return nil
}

type fakeEvents struct {
	event domain.Event
}

func (f *fakeEvents) GetEvent(context.Context, int64) (*domain.Event, error) {
	e := f.event
	return &e, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	err   error
	kinds []string
}

func (f *fakeNotifier) Changed(_ context.Context, _ int64, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.kinds = append(f.kinds, kind)
	return nil
}

type failMailer struct {
	err  error
	sent int
}

func (m *failMailer) SendTicketEmail(mailer.TicketEmail) error {
	if m.err != nil {
		return m.err
	}
	m.sent++
	return nil
}

func (m *failMailer) SendWaitlistEmail(mailer.WaitlistEmail) error { return m.err }

func testEvent(capacity, sold int, starts time.Time) domain.Event {
	return domain.Event{
		ID:          1,
		Title:       "Winter Formal",
		Capacity:    capacity,
		TicketsSold: sold,
		StartsAt:    starts,
	}
}

func TestRequestTicket(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	starts := now.Add(6 * time.Hour)

	t.Run("issues a standard ticket", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		mail := &failMailer{}
		notifier := &fakeNotifier{}
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, mail, notifier, clock.NewFixed(now))

		ticket, failures, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		require.NoError(t, err)
		assert.Empty(t, failures)
		assert.Equal(t, domain.TicketStandard, ticket.Type)
		assert.Equal(t, "jdoe@stanford.edu", ticket.Email)
		assert.Equal(t, 1, store.sold())
		assert.Equal(t, 1, mail.sent)
		assert.Equal(t, []string{"ticket_issued"}, notifier.kinds)
	})

	t.Run("one winner for the last seat under a burst", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 99, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		const n = 32
		results := make(chan error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, err := svc.RequestTicket(
					context.Background(),
					1,
					"student"+strconv.Itoa(i)+"@stanford.edu",
					"",
				)
				results <- err
			}(i)
		}
		wg.Wait()
		close(results)

		var wins, soldOut int
		for err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrCapacityExceeded):
				soldOut++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, n-1, soldOut)
		assert.Equal(t, 100, store.sold())
	})

	t.Run("rejects a second ticket for the same person", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		_, _, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		require.NoError(t, err)

		_, _, err = svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		assert.ErrorIs(t, err, ErrDuplicateTicket)
		assert.Equal(t, 1, store.sold())
	})

	t.Run("rejects self referral", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		_, _, err := svc.RequestTicket(context.Background(), 1, "JDoe@stanford.edu", "jdoe")
		assert.ErrorIs(t, err, ErrSelfReferral)
		assert.Equal(t, 0, store.sold())
	})

	t.Run("unknown event outranks a self referral", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		_, _, err := svc.RequestTicket(context.Background(), 999, "jdoe@stanford.edu", "jdoe")
		assert.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("closed sales outrank a self referral", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(starts))

		_, _, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "jdoe")
		assert.ErrorIs(t, err, ErrSalesClosed)
	})

	t.Run("rejects an untracked referral code", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		_, _, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "nobody")
		assert.ErrorIs(t, err, ErrInvalidReferral)
	})

	t.Run("credits a known referral code", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		store.referrals["asmith"] = true
		referrals := &fakeReferrals{}
		svc := New(store, referrals, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		ticket, failures, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "asmith")
		require.NoError(t, err)
		assert.Empty(t, failures)
		assert.Equal(t, "asmith", ticket.ReferralCode)
		assert.Equal(t, []string{"asmith"}, referrals.codes)
		assert.Equal(t, []domain.AttributionKind{domain.AttributionTicket}, referrals.kinds)
	})

	t.Run("closes sales at event start", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(starts))

		_, _, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		assert.ErrorIs(t, err, ErrSalesClosed)
	})

	t.Run("email failure keeps the ticket", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		mail := &failMailer{err: errors.New("smtp: connection refused")}
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, mail, &fakeNotifier{}, clock.NewFixed(now))

		ticket, failures, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		assert.ErrorIs(t, err, ErrEmailDelivery)
		require.NotNil(t, ticket)
		assert.Equal(t, 1, store.sold())

		var names []string
		for _, f := range failures {
			names = append(names, f.Name)
		}
		assert.Contains(t, names, "email")
	})

	t.Run("notify failure is degraded, not fatal", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		notifier := &fakeNotifier{err: errors.New("redis down")}
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, notifier, clock.NewFixed(now))

		ticket, failures, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		require.NoError(t, err)
		require.NotNil(t, ticket)
		require.Len(t, failures, 1)
		assert.Equal(t, "notify", failures[0].Name)
	})
}

func TestIssueAdminTicket(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	starts := now.Add(6 * time.Hour)

	t.Run("defaults to VIP and bypasses the duplicate check", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		_, _, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		require.NoError(t, err)

		vip, _, err := svc.IssueAdminTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketVIP, vip.Type)
		assert.Equal(t, 2, store.sold())
	})

	t.Run("standard admin issue keeps the duplicate check", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		_, _, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		require.NoError(t, err)

		_, _, err = svc.IssueAdminTicket(context.Background(), 1, "jdoe@stanford.edu", domain.TicketStandard)
		assert.ErrorIs(t, err, ErrDuplicateTicket)
	})

	t.Run("VIP consumes capacity", func(t *testing.T) {
		store := newFakeStore(testEvent(1, 1, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		_, _, err := svc.IssueAdminTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("sends no confirmation email", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		mail := &failMailer{err: errors.New("smtp down")}
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, mail, &fakeNotifier{}, clock.NewFixed(now))

		_, failures, err := svc.IssueAdminTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		require.NoError(t, err)
		assert.Empty(t, failures)
	})
}

func TestCancelTicket(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	starts := now.Add(6 * time.Hour)

	t.Run("frees the seat and announces it", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		notifier := &fakeNotifier{}
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, notifier, clock.NewFixed(now))

		ticket, _, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		require.NoError(t, err)
		require.Equal(t, 1, store.sold())

		failures, err := svc.CancelTicket(context.Background(), ticket.ID, "jdoe@stanford.edu")
		require.NoError(t, err)
		assert.Empty(t, failures)
		assert.Equal(t, 0, store.sold())
		assert.Contains(t, notifier.kinds, "seat_freed")
	})

	t.Run("blocked while any event is live", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		ticket, _, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		require.NoError(t, err)

		store.anyLive = true
		_, err = svc.CancelTicket(context.Background(), ticket.ID, "jdoe@stanford.edu")
		assert.ErrorIs(t, err, ErrEventLive)
		assert.Equal(t, 1, store.sold())
	})

	t.Run("unknown ticket", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		_, err := svc.CancelTicket(context.Background(), uuid.New(), "jdoe@stanford.edu")
		assert.ErrorIs(t, err, ErrTicketNotFound)
	})

	t.Run("someone else's ticket looks missing", func(t *testing.T) {
		store := newFakeStore(testEvent(100, 0, starts))
		svc := New(store, &fakeReferrals{}, &fakeEvents{event: store.event}, &failMailer{}, &fakeNotifier{}, clock.NewFixed(now))

		ticket, _, err := svc.RequestTicket(context.Background(), 1, "jdoe@stanford.edu", "")
		require.NoError(t, err)

		_, err = svc.CancelTicket(context.Background(), ticket.ID, "asmith@stanford.edu")
		assert.ErrorIs(t, err, ErrTicketNotFound)
	})
}
