package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/repository"
)

type ScanRepo struct {
	store *Store
}

// Scan performs the one-way unscanned -> scanned transition against the
// current live event as a single serializable unit. Scanning an already
// scanned ticket is not an error: the result carries the prior scan
// metadata so the gate can tell "used" from "invalid". The live event's
// scanned_count is incremented separately (best effort) by the caller via
// IncrementScanCount.
//
// Returns:
//   - *domain.ScanResult: the transition outcome.
//   - error: repository.ErrNoLiveEvent, ErrNotFound (ticket unresolvable)
//     or ErrWrongEvent.
func (r *ScanRepo) Scan(ctx context.Context, p repository.ScanParams) (*domain.ScanResult, error) {
	const op = "postgres.ScanRepo.Scan"

	var res *domain.ScanResult
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		var err error
		res, err = r.scanCore(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return res, nil
}

// IncrementScanCount bumps the live counter shown on the admin console.
// Callers treat a failure here as non-fatal; the scan itself stands.
func (r *ScanRepo) IncrementScanCount(ctx context.Context, eventID int64) error {
	const op = "postgres.ScanRepo.IncrementScanCount"

	db := r.store.pool

	_, err := db.Exec(ctx,
		`UPDATE events SET scanned_count = scanned_count + 1 WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// Unscan is the administrative override: force-reset to unscanned and clear
// the scan metadata. The scanned_count is walked back when the ticket was
// actually scanned.
func (r *ScanRepo) Unscan(ctx context.Context, ticketID uuid.UUID) error {
	const op = "postgres.ScanRepo.Unscan"

	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		return r.unscanCore(ctx, tx, ticketID)
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *ScanRepo) scanCore(ctx context.Context, db DB, p repository.ScanParams) (*domain.ScanResult, error) {
	var liveID int64
	err := db.QueryRow(ctx, `SELECT id FROM events WHERE live LIMIT 1`).Scan(&liveID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNoLiveEvent
		}
		return nil, err
	}

	t, err := resolveTicket(ctx, db, p)
	if err != nil {
		return nil, err
	}

	if t.EventID != liveID {
		return nil, repository.ErrWrongEvent
	}

	if t.Scanned {
		return &domain.ScanResult{
			Ticket:         *t,
			EventID:        liveID,
			AlreadyScanned: true,
			ScanTime:       t.ScanTime,
			ScanOperator:   t.ScanOperator,
		}, nil
	}

	tag, err := db.Exec(ctx,
		`UPDATE tickets
        	SET scanned = TRUE, scan_time = $2, scan_operator = $3
      	 WHERE id = $1 AND NOT scanned`,
		t.ID, p.Now, p.Operator,
	)
	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		// Lost the race to another scanner inside a weaker isolation
		// level; report the ticket as already used.
		fresh, err := ticketByID(ctx, db, t.ID)
		if err != nil {
			return nil, err
		}
		return &domain.ScanResult{
			Ticket:         *fresh,
			EventID:        liveID,
			AlreadyScanned: true,
			ScanTime:       fresh.ScanTime,
			ScanOperator:   fresh.ScanOperator,
		}, nil
	}

	t.Scanned = true
	t.ScanTime = &p.Now
	t.ScanOperator = p.Operator

	return &domain.ScanResult{
		Ticket:       *t,
		EventID:      liveID,
		ScanTime:     t.ScanTime,
		ScanOperator: p.Operator,
	}, nil
}

func (r *ScanRepo) unscanCore(ctx context.Context, db DB, ticketID uuid.UUID) error {
	var (
		eventID    int64
		wasScanned bool
	)

	err := db.QueryRow(ctx,
		`SELECT event_id, scanned FROM tickets WHERE id = $1`,
		ticketID,
	).Scan(&eventID, &wasScanned)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}

	if _, err := db.Exec(ctx,
		`UPDATE tickets
        	SET scanned = FALSE, scan_time = NULL, scan_operator = ''
      	 WHERE id = $1`,
		ticketID,
	); err != nil {
		return err
	}

	if wasScanned {
		if _, err := db.Exec(ctx,
			`UPDATE events
	        	SET scanned_count = GREATEST(scanned_count - 1, 0)
	      	 WHERE id = $1`,
			eventID,
		); err != nil {
			return err
		}
	}

	return nil
}

func resolveTicket(ctx context.Context, db DB, p repository.ScanParams) (*domain.Ticket, error) {
	if p.TicketID != nil {
		return ticketByID(ctx, db, *p.TicketID)
	}

	var t domain.Ticket
	err := db.QueryRow(ctx,
		`SELECT id, event_id, email, type, COALESCE(referral_code, ''),
	        scanned, scan_time, COALESCE(scan_operator, ''), created_at
       	 FROM tickets
      	 WHERE event_id = $1 AND email = $2
      	 ORDER BY created_at
      	 LIMIT 1`,
		p.EventID, p.Email,
	).Scan(&t.ID, &t.EventID, &t.Email, &t.Type, &t.ReferralCode,
		&t.Scanned, &t.ScanTime, &t.ScanOperator, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func ticketByID(ctx context.Context, db DB, id uuid.UUID) (*domain.Ticket, error) {
	var t domain.Ticket
	err := db.QueryRow(ctx,
		`SELECT id, event_id, email, type, COALESCE(referral_code, ''),
	        scanned, scan_time, COALESCE(scan_operator, ''), created_at
       	 FROM tickets
      	 WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.EventID, &t.Email, &t.Type, &t.ReferralCode,
		&t.Scanned, &t.ScanTime, &t.ScanOperator, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
