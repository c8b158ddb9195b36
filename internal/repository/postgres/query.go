package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clubdoor/clubdoor/internal/domain"
)

type QueryRepo struct {
	store *Store
}

const eventColumns = `id, title, location, capacity, tickets_sold, reserved,
	scanned_count, release_at, starts_at, doors_at, live, mystery, created_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(&e.ID, &e.Title, &e.Location, &e.Capacity, &e.TicketsSold,
		&e.Reserved, &e.ScannedCount, &e.ReleaseAt, &e.StartsAt, &e.DoorsAt,
		&e.Live, &e.Mystery, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEvent retrieves an event by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the event is not found.
func (r *QueryRepo) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "postgres.QueryRepo.GetEvent"

	db := r.store.pool

	e, err := scanEvent(db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return e, nil
}

// LiveEvent returns the event currently open for scanning.
//
// Returns:
//   - error: repository.ErrNotFound when no event is live.
func (r *QueryRepo) LiveEvent(ctx context.Context) (*domain.Event, error) {
	const op = "postgres.QueryRepo.LiveEvent"

	db := r.store.pool

	e, err := scanEvent(db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE live LIMIT 1`))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return e, nil
}

// ListEvents lists events in start order.
func (r *QueryRepo) ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	const op = "postgres.QueryRepo.ListEvents"

	db := r.store.pool

	rows, err := db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 ORDER BY starts_at
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// Availability reads the ledger for an event. The total figures count every
// ticket against capacity; the public figures exclude VIP rows so admin
// comps never fake a sellout.
//
// Returns:
//   - error: repository.ErrNotFound if the event is not found.
func (r *QueryRepo) Availability(ctx context.Context, eventID int64) (*domain.Availability, error) {
	const op = "postgres.QueryRepo.Availability"

	db := r.store.pool

	var a domain.Availability
	err := db.QueryRow(ctx,
		`SELECT e.id, e.capacity, e.tickets_sold,
	        (SELECT COUNT(*) FROM tickets t
	      	  WHERE t.event_id = e.id AND t.type <> 'VIP')
       	 FROM events e WHERE e.id = $1`,
		eventID,
	).Scan(&a.EventID, &a.Capacity, &a.Sold, &a.PublicSold)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	a.Remaining = a.Capacity - a.Sold
	if a.Remaining < 0 {
		a.Remaining = 0
	}
	a.PublicRemaining = a.Capacity - a.PublicSold
	if a.PublicRemaining < 0 {
		a.PublicRemaining = 0
	}

	return &a, nil
}

// TicketByID retrieves a ticket.
//
// Returns:
//   - error: repository.ErrNotFound if the ticket is not found.
func (r *QueryRepo) TicketByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	const op = "postgres.QueryRepo.TicketByID"

	t, err := ticketByID(ctx, r.store.pool, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return t, nil
}

// TicketFor retrieves the person's ticket for an event.
//
// Returns:
//   - error: repository.ErrNotFound if the person holds no ticket.
func (r *QueryRepo) TicketFor(ctx context.Context, eventID int64, email string) (*domain.Ticket, error) {
	const op = "postgres.QueryRepo.TicketFor"

	db := r.store.pool

	var t domain.Ticket
	err := db.QueryRow(ctx,
		`SELECT id, event_id, email, type, COALESCE(referral_code, ''),
	        scanned, scan_time, COALESCE(scan_operator, ''), created_at
       	 FROM tickets
      	 WHERE event_id = $1 AND email = $2
      	 ORDER BY created_at
      	 LIMIT 1`,
		eventID, email,
	).Scan(&t.ID, &t.EventID, &t.Email, &t.Type, &t.ReferralCode,
		&t.Scanned, &t.ScanTime, &t.ScanOperator, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &t, nil
}
