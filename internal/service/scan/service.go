package scan

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clubdoor/clubdoor/internal/clock"
	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/effects"
	"github.com/clubdoor/clubdoor/internal/metrics"
	"github.com/clubdoor/clubdoor/internal/repository"
)

type Config struct {
	// EmailDomain completes a bare SUNET ID into an institutional email.
	EmailDomain string
}

// Store is the storage collaborator. Scan is a single atomic operation:
// live-event resolution, ticket lookup and the unscanned -> scanned
// transition share one transaction. The scanned_count increment is a
// separate best-effort call.
type Store interface {
	Scan(ctx context.Context, p repository.ScanParams) (*domain.ScanResult, error)
	IncrementScanCount(ctx context.Context, eventID int64) error
	Unscan(ctx context.Context, ticketID uuid.UUID) error
}

type Notifier interface {
	Changed(ctx context.Context, eventID int64, kind string) error
}

type Service struct {
	store    Store
	notifier Notifier
	clock    clock.Clock
	cfg      Config
}

func New(store Store, notifier Notifier, clk clock.Clock, cfg Config) *Service {
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = "stanford.edu"
	}

	return &Service{
		store:    store,
		notifier: notifier,
		clock:    clk,
		cfg:      cfg,
	}
}

// Input identifies the ticket to scan: either TicketID, or Identity (an
// email or bare SUNET ID) plus EventID.
type Input struct {
	TicketID string
	Identity string
	EventID  int64
	Operator string
}

// Scan performs the one-way admission transition against the live event.
// An already-scanned ticket is reported as such with its prior scan
// metadata, not as an error, so the gate can tell "used" from "invalid".
// The live counter increment is best effort and never rolls back the scan.
//
// Returns:
//   - *domain.ScanResult: the transition outcome.
//   - []effects.Failure: non-fatal side effects that did not take.
//   - error: scan.ErrBadIdentifier, ErrNoLiveEvent, ErrInvalidTicket or
//     ErrWrongEvent.
func (s *Service) Scan(ctx context.Context, in Input) (*domain.ScanResult, []effects.Failure, error) {
	const op = "service.scan.Scan"

	p := repository.ScanParams{
		Operator: in.Operator,
		Now:      s.clock.Now(),
	}

	switch {
	case in.TicketID != "":
		id, err := uuid.Parse(in.TicketID)
		if err != nil {
			metrics.Scans.WithLabelValues("invalid").Inc()
			return nil, nil, fmt.Errorf("%s:%w", op, ErrInvalidTicket)
		}
		p.TicketID = &id
	case in.Identity != "":
		p.Email = domain.NormalizeIdentity(in.Identity, s.cfg.EmailDomain)
		p.EventID = in.EventID
	default:
		return nil, nil, fmt.Errorf("%s:%w", op, ErrBadIdentifier)
	}

	res, err := s.store.Scan(ctx, p)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoLiveEvent):
			metrics.Scans.WithLabelValues("no_live_event").Inc()
			return nil, nil, fmt.Errorf("%s:%w", op, ErrNoLiveEvent)
		case errors.Is(err, repository.ErrNotFound):
			metrics.Scans.WithLabelValues("invalid").Inc()
			return nil, nil, fmt.Errorf("%s:%w", op, ErrInvalidTicket)
		case errors.Is(err, repository.ErrWrongEvent):
			metrics.Scans.WithLabelValues("wrong_event").Inc()
			return nil, nil, fmt.Errorf("%s:%w", op, ErrWrongEvent)
		}
		return nil, nil, fmt.Errorf("%s:%w", op, err)
	}

	if res.AlreadyScanned {
		metrics.Scans.WithLabelValues("already_scanned").Inc()
		return res, nil, nil
	}

	metrics.Scans.WithLabelValues("accepted").Inc()

	var fx effects.List
	fx.Add("scan_count", func(ctx context.Context) error {
		return s.store.IncrementScanCount(ctx, res.EventID)
	})
	fx.Add("notify", func(ctx context.Context) error {
		return s.notifier.Changed(ctx, res.EventID, "scan")
	})

	failures := fx.Run(ctx)
	for _, f := range failures {
		metrics.DegradedOutcomes.WithLabelValues(f.Name).Inc()
	}

	return res, failures, nil
}

// Unscan is the administrative override: force-reset the ticket to
// unscanned and clear its scan metadata.
//
// Returns:
//   - error: scan.ErrInvalidTicket if the ticket does not exist.
func (s *Service) Unscan(ctx context.Context, ticketID uuid.UUID) error {
	const op = "service.scan.Unscan"

	if err := s.store.Unscan(ctx, ticketID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrInvalidTicket)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
