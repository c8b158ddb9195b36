package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/repository"
)

type WaitlistRepo struct {
	store *Store
}

// Join appends a person to the event's waitlist. The position is stamped
// from the event's counter inside the same serializable unit as the
// sold-out and duplicate checks, so concurrent joins can never share a
// position. Positions are never reused after removals.
//
// Returns:
//   - *domain.WaitlistEntry: the stored entry.
//   - int: total entries on the waitlist after the join.
//   - error: repository.ErrNotFound, ErrWaitlistClosed, ErrNotSoldOut,
//     ErrHasTicket or ErrOnWaitlist depending on the failed check.
func (r *WaitlistRepo) Join(ctx context.Context, p repository.JoinWaitlistParams) (*domain.WaitlistEntry, int, error) {
	const op = "postgres.WaitlistRepo.Join"

	var (
		e     *domain.WaitlistEntry
		total int
	)
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		var err error
		e, total, err = r.joinCore(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return e, total, nil
}

// Leave removes the person's entry. Remaining rows are not renumbered; rank
// is derived on read.
//
// Returns:
//   - error: repository.ErrNotFound if no entry exists.
func (r *WaitlistRepo) Leave(ctx context.Context, eventID int64, email string) error {
	const op = "postgres.WaitlistRepo.Leave"

	db := r.store.pool

	tag, err := db.Exec(ctx,
		`DELETE FROM waitlist_entries WHERE event_id = $1 AND email = $2`,
		eventID, email,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// Status derives the person's current rank: 1 + entries with a strictly
// smaller position. O(n) per query is fine at this scale.
func (r *WaitlistRepo) Status(ctx context.Context, eventID int64, email string) (*domain.WaitlistStatus, error) {
	const op = "postgres.WaitlistRepo.Status"

	db := r.store.pool

	var position int64
	err := db.QueryRow(ctx,
		`SELECT position FROM waitlist_entries
      	 WHERE event_id = $1 AND email = $2`,
		eventID, email,
	).Scan(&position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			total, terr := r.total(ctx, db, eventID)
			if terr != nil {
				return nil, fmt.Errorf("%s:%w", op, translateDBErr(terr))
			}
			return &domain.WaitlistStatus{OnWaitlist: false, Total: total}, nil
		}
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	var rank, total int
	err = db.QueryRow(ctx,
		`SELECT
			1 + COUNT(*) FILTER (WHERE position < $2),
			COUNT(*)
       	 FROM waitlist_entries WHERE event_id = $1`,
		eventID, position,
	).Scan(&rank, &total)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &domain.WaitlistStatus{OnWaitlist: true, Rank: rank, Total: total}, nil
}

// Entries lists a waitlist in line order.
func (r *WaitlistRepo) Entries(ctx context.Context, eventID int64) ([]domain.WaitlistEntry, error) {
	const op = "postgres.WaitlistRepo.Entries"

	db := r.store.pool

	rows, err := db.Query(ctx,
		`SELECT id, event_id, email, position, COALESCE(referral_code, ''), created_at
       	 FROM waitlist_entries
      	 WHERE event_id = $1
      	 ORDER BY position`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.WaitlistEntry
	for rows.Next() {
		var e domain.WaitlistEntry
		if err := rows.Scan(&e.ID, &e.EventID, &e.Email, &e.Position, &e.ReferralCode, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func (r *WaitlistRepo) joinCore(ctx context.Context, db DB, p repository.JoinWaitlistParams) (*domain.WaitlistEntry, int, error) {
	var (
		capacity int
		sold     int
		starts   time.Time
	)

	err := db.QueryRow(ctx,
		`SELECT capacity, tickets_sold, starts_at
       	 FROM events WHERE id = $1`,
		p.EventID,
	).Scan(&capacity, &sold, &starts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, repository.ErrNotFound
		}
		return nil, 0, err
	}

	if starts.Sub(p.Now) <= p.CloseWindow {
		return nil, 0, repository.ErrWaitlistClosed
	}

	if sold < capacity {
		return nil, 0, repository.ErrNotSoldOut
	}

	var hasTicket bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM tickets WHERE event_id = $1 AND email = $2
	 	 )`,
		p.EventID, p.Email,
	).Scan(&hasTicket); err != nil {
		return nil, 0, err
	}
	if hasTicket {
		return nil, 0, repository.ErrHasTicket
	}

	var onList bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM waitlist_entries WHERE event_id = $1 AND email = $2
	 	 )`,
		p.EventID, p.Email,
	).Scan(&onList); err != nil {
		return nil, 0, err
	}
	if onList {
		return nil, 0, repository.ErrOnWaitlist
	}

	e := &domain.WaitlistEntry{
		ID:           uuid.New(),
		EventID:      p.EventID,
		Email:        p.Email,
		ReferralCode: p.ReferralCode,
		CreatedAt:    p.Now,
	}

	// The sparse monotonic key comes from a per-event counter, not
	// MAX(position): a MAX would hand out an old position again after the
	// tail of the line leaves.
	if err := db.QueryRow(ctx,
		`UPDATE events SET waitlist_seq = waitlist_seq + 1
      	 WHERE id = $1
     	 RETURNING waitlist_seq`,
		p.EventID,
	).Scan(&e.Position); err != nil {
		return nil, 0, err
	}

	if _, err := db.Exec(ctx,
		`INSERT INTO waitlist_entries(id, event_id, email, position, referral_code, created_at)
       	 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
		e.ID, e.EventID, e.Email, e.Position, e.ReferralCode, e.CreatedAt,
	); err != nil {
		return nil, 0, err
	}

	total, err := r.total(ctx, db, p.EventID)
	if err != nil {
		return nil, 0, err
	}

	return e, total, nil
}

func (r *WaitlistRepo) total(ctx context.Context, db DB, eventID int64) (int, error) {
	var total int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM waitlist_entries WHERE event_id = $1`,
		eventID,
	).Scan(&total)
	return total, err
}
