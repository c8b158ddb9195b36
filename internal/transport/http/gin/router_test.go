package httpgin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubdoor/clubdoor/internal/clock"
	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/mailer"
	"github.com/clubdoor/clubdoor/internal/repository"
	"github.com/clubdoor/clubdoor/internal/service"
	"github.com/clubdoor/clubdoor/internal/service/admission"
	"github.com/clubdoor/clubdoor/internal/service/query"
)

type fakeAdmissionStore struct {
	mu     sync.Mutex
	event  domain.Event
	issued map[string]bool
}

func (s *fakeAdmissionStore) IssueTicket(_ context.Context, p repository.IssueTicketParams) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.EventID != s.event.ID {
		return nil, repository.ErrNotFound
	}
	if !p.Now.Before(s.event.StartsAt) {
		return nil, repository.ErrSalesClosed
	}
	if !p.BypassDuplicate && s.issued[p.Email] {
		return nil, repository.ErrDuplicateTicket
	}
	if s.event.TicketsSold >= s.event.Capacity {
		return nil, repository.ErrCapacityFull
	}

	s.event.TicketsSold++
	s.issued[p.Email] = true
	return &domain.Ticket{
		ID:      uuid.New(),
		EventID: p.EventID,
		Email:   p.Email,
		Type:    p.Type,
	}, nil
}

func (s *fakeAdmissionStore) CancelTicket(context.Context, uuid.UUID, string) (int64, error) {
	return 0, repository.ErrNotFound
}

type fakeQueryStore struct {
	events map[int64]domain.Event
}

func (s *fakeQueryStore) GetEvent(_ context.Context, id int64) (*domain.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (s *fakeQueryStore) LiveEvent(context.Context) (*domain.Event, error) {
	return nil, repository.ErrNotFound
}

func (s *fakeQueryStore) ListEvents(context.Context, int, int) ([]domain.Event, error) {
	return nil, nil
}

func (s *fakeQueryStore) Availability(context.Context, int64) (*domain.Availability, error) {
	return nil, repository.ErrNotFound
}

func (s *fakeQueryStore) TicketByID(context.Context, uuid.UUID) (*domain.Ticket, error) {
	return nil, repository.ErrNotFound
}

func (s *fakeQueryStore) TicketFor(context.Context, int64, string) (*domain.Ticket, error) {
	return nil, repository.ErrNotFound
}

type nopReferrals struct{}

func (nopReferrals) Attribute(context.Context, int64, string, domain.AttributionKind) error {
	return nil
}

type staticEvents struct{ event domain.Event }

func (s staticEvents) GetEvent(context.Context, int64) (*domain.Event, error) {
	e := s.event
	return &e, nil
}

type nopNotifier struct{}

func (nopNotifier) Changed(context.Context, int64, string) error { return nil }

type stubMailer struct{ err error }

func (m stubMailer) SendTicketEmail(mailer.TicketEmail) error     { return m.err }
func (m stubMailer) SendWaitlistEmail(mailer.WaitlistEmail) error { return m.err }

func newTestRouter(t *testing.T, store *fakeAdmissionStore, mail mailer.Mailer, now time.Time) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svcs := &service.Services{
		Admission: admission.New(store, nopReferrals{}, staticEvents{event: store.event}, mail, nopNotifier{}, clock.NewFixed(now)),
		Query:     query.New(&fakeQueryStore{events: map[int64]domain.Event{store.event.ID: store.event}}, nil, clock.NewFixed(now), query.Config{}),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(svcs, nil, nil, logger)
}

func defaultEvent(now time.Time) domain.Event {
	return domain.Event{
		ID:       1,
		Title:    "Winter Formal",
		Capacity: 100,
		StartsAt: now.Add(6 * time.Hour),
	}
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestTicketEndpoint(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("issues and reports the ticket", func(t *testing.T) {
		store := &fakeAdmissionStore{event: defaultEvent(now), issued: map[string]bool{}}
		r := newTestRouter(t, store, stubMailer{}, now)

		w := postJSON(r, "/events/1/tickets", `{"email":"jdoe@stanford.edu"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp TicketResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.TicketID)
		assert.Equal(t, domain.TicketStandard, resp.Type)
		assert.Empty(t, resp.Degraded)
	})

	t.Run("duplicate maps to 409", func(t *testing.T) {
		store := &fakeAdmissionStore{event: defaultEvent(now), issued: map[string]bool{}}
		r := newTestRouter(t, store, stubMailer{}, now)

		require.Equal(t, http.StatusCreated, postJSON(r, "/events/1/tickets", `{"email":"jdoe@stanford.edu"}`).Code)
		assert.Equal(t, http.StatusConflict, postJSON(r, "/events/1/tickets", `{"email":"jdoe@stanford.edu"}`).Code)
	})

	t.Run("sold out maps to 409", func(t *testing.T) {
		e := defaultEvent(now)
		e.TicketsSold = e.Capacity
		store := &fakeAdmissionStore{event: e, issued: map[string]bool{}}
		r := newTestRouter(t, store, stubMailer{}, now)

		assert.Equal(t, http.StatusConflict, postJSON(r, "/events/1/tickets", `{"email":"jdoe@stanford.edu"}`).Code)
	})

	t.Run("sales closed maps to 412", func(t *testing.T) {
		store := &fakeAdmissionStore{event: defaultEvent(now), issued: map[string]bool{}}
		r := newTestRouter(t, store, stubMailer{}, now.Add(12*time.Hour))

		assert.Equal(t, http.StatusPreconditionFailed, postJSON(r, "/events/1/tickets", `{"email":"jdoe@stanford.edu"}`).Code)
	})

	t.Run("email failure returns 502 with the ticket", func(t *testing.T) {
		store := &fakeAdmissionStore{event: defaultEvent(now), issued: map[string]bool{}}
		r := newTestRouter(t, store, stubMailer{err: errors.New("smtp down")}, now)

		w := postJSON(r, "/events/1/tickets", `{"email":"jdoe@stanford.edu"}`)
		require.Equal(t, http.StatusBadGateway, w.Code)

		var resp TicketResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.TicketID, "the issued ticket must survive the email failure")
		assert.Contains(t, resp.Degraded, "email")
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		store := &fakeAdmissionStore{event: defaultEvent(now), issued: map[string]bool{}}
		r := newTestRouter(t, store, stubMailer{}, now)

		assert.Equal(t, http.StatusBadRequest, postJSON(r, "/events/1/tickets", `{"email":"not-an-email"}`).Code)
	})
}

func TestReadEndpoints(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeAdmissionStore{event: defaultEvent(now), issued: map[string]bool{}}
	r := newTestRouter(t, store, stubMailer{}, now)

	t.Run("healthz", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("event returns an ETag and honors If-None-Match", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/1", nil))
		require.Equal(t, http.StatusOK, w.Code)
		tag := w.Header().Get("ETag")
		require.NotEmpty(t, tag)

		req := httptest.NewRequest(http.MethodGet, "/events/1", nil)
		req.Header.Set("If-None-Match", tag)
		w2 := httptest.NewRecorder()
		r.ServeHTTP(w2, req)
		assert.Equal(t, http.StatusNotModified, w2.Code)
	})

	t.Run("unknown event maps to 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/404", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("no live event maps to 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("cancel without identity maps to 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/tickets/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
