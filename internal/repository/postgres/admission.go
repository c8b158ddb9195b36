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

type AdmissionRepo struct {
	store *Store
}

// IssueTicket runs the full admission sequence as one serializable unit:
// event lookup, sale-window check, duplicate check, referral resolution,
// conditional capacity increment, ticket insert. Two concurrent calls
// against the last seat cannot both pass the capacity update.
//
// Returns:
//   - *domain.Ticket: the issued ticket.
//   - error: repository.ErrNotFound, ErrSalesClosed, ErrDuplicateTicket,
//     ErrSelfReferral, ErrUnknownReferral or ErrCapacityFull depending on
//     the failed check.
func (r *AdmissionRepo) IssueTicket(ctx context.Context, p repository.IssueTicketParams) (*domain.Ticket, error) {
	const op = "postgres.AdmissionRepo.IssueTicket"

	var t *domain.Ticket
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		var err error
		t, err = r.issueTicketCore(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return t, nil
}

// CancelTicket deletes the holder's ticket and frees the seat. Cancellation
// is refused while any event is live, not just the ticket's own.
//
// Returns:
//   - int64: the event the seat was freed on.
//   - error: repository.ErrNotFound if the ticket is absent or owned by
//     someone else, repository.ErrEventLive if cancellation is locked out.
func (r *AdmissionRepo) CancelTicket(ctx context.Context, ticketID uuid.UUID, email string) (int64, error) {
	const op = "postgres.AdmissionRepo.CancelTicket"

	var eventID int64
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		var err error
		eventID, err = r.cancelTicketCore(ctx, tx, ticketID, email)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return eventID, nil
}

func (r *AdmissionRepo) issueTicketCore(ctx context.Context, db DB, p repository.IssueTicketParams) (*domain.Ticket, error) {
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
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if !p.Now.Before(starts) {
		return nil, repository.ErrSalesClosed
	}

	if !p.BypassDuplicate {
		var exists bool
		err := db.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM tickets WHERE event_id = $1 AND email = $2
		 	 )`,
			p.EventID, p.Email,
		).Scan(&exists)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, repository.ErrDuplicateTicket
		}
	}

	if p.ReferralCode != "" {
		if p.ReferralCode == p.RequesterCode {
			return nil, repository.ErrSelfReferral
		}

		var known bool
		err := db.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM referral_records WHERE event_id = $1 AND code = $2
		 	 )`,
			p.EventID, p.ReferralCode,
		).Scan(&known)
		if err != nil {
			return nil, err
		}
		if !known {
			return nil, repository.ErrUnknownReferral
		}
	}

	tag, err := db.Exec(ctx,
		`UPDATE events
        	SET tickets_sold = tickets_sold + 1,
            	reserved = reserved + 1
      	 WHERE id = $1 AND tickets_sold < capacity`,
		p.EventID,
	)
	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		return nil, repository.ErrCapacityFull
	}

	t := &domain.Ticket{
		ID:           uuid.New(),
		EventID:      p.EventID,
		Email:        p.Email,
		Type:         p.Type,
		ReferralCode: p.ReferralCode,
		CreatedAt:    p.Now,
	}

	if _, err := db.Exec(ctx,
		`INSERT INTO tickets(id, event_id, email, type, referral_code, created_at)
       	 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
		t.ID, t.EventID, t.Email, t.Type, t.ReferralCode, t.CreatedAt,
	); err != nil {
		return nil, err
	}

	return t, nil
}

func (r *AdmissionRepo) cancelTicketCore(ctx context.Context, db DB, ticketID uuid.UUID, email string) (int64, error) {
	var (
		eventID int64
		owner   string
	)

	err := db.QueryRow(ctx,
		`SELECT event_id, email FROM tickets WHERE id = $1`,
		ticketID,
	).Scan(&eventID, &owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}

	if owner != email {
		return 0, repository.ErrNotFound
	}

	var anyLive bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE live)`,
	).Scan(&anyLive); err != nil {
		return 0, err
	}

	if anyLive {
		return 0, repository.ErrEventLive
	}

	if _, err := db.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, ticketID); err != nil {
		return 0, err
	}

	if _, err := db.Exec(ctx,
		`UPDATE events
        	SET tickets_sold = GREATEST(tickets_sold - 1, 0),
            	reserved = GREATEST(reserved - 1, 0)
      	 WHERE id = $1`,
		eventID,
	); err != nil {
		return 0, err
	}

	return eventID, nil
}
