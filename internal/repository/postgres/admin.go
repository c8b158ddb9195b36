package postgres

import (
	"context"
	"fmt"

	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/repository"
)

type AdminRepo struct {
	store *Store
}

// CreateEvent inserts an event and returns its ID.
//
// Returns:
//   - error: repository.ErrConflict on a uniqueness violation.
func (r *AdminRepo) CreateEvent(ctx context.Context, e domain.Event) (int64, error) {
	const op = "postgres.AdminRepo.CreateEvent"

	db := r.store.pool

	var id int64
	err := db.QueryRow(ctx,
		`INSERT INTO events(title, location, capacity, release_at, starts_at, doors_at, mystery)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7)
      	 RETURNING id`,
		e.Title, e.Location, e.Capacity, e.ReleaseAt, e.StartsAt, e.DoorsAt, e.Mystery,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

// UpdateEvent rewrites the editable fields. Counters and the live flag are
// managed elsewhere.
func (r *AdminRepo) UpdateEvent(ctx context.Context, e domain.Event) error {
	const op = "postgres.AdminRepo.UpdateEvent"

	db := r.store.pool

	tag, err := db.Exec(ctx,
		`UPDATE events
        	SET title = $2, location = $3, capacity = $4,
            	release_at = $5, starts_at = $6, doors_at = $7, mystery = $8
      	 WHERE id = $1`,
		e.ID, e.Title, e.Location, e.Capacity, e.ReleaseAt, e.StartsAt, e.DoorsAt, e.Mystery,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// SetLive marks one event live. Every other live flag is cleared inside the
// same transaction, which is what keeps "at most one live event" true
// without a separate global.
func (r *AdminRepo) SetLive(ctx context.Context, eventID int64) error {
	const op = "postgres.AdminRepo.SetLive"

	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		return r.setLiveCore(ctx, tx, eventID)
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// ClearLive clears the event's live flag.
func (r *AdminRepo) ClearLive(ctx context.Context, eventID int64) error {
	const op = "postgres.AdminRepo.ClearLive"

	db := r.store.pool

	tag, err := db.Exec(ctx,
		`UPDATE events SET live = FALSE WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *AdminRepo) setLiveCore(ctx context.Context, db DB, eventID int64) error {
	if _, err := db.Exec(ctx, `UPDATE events SET live = FALSE WHERE live`); err != nil {
		return err
	}

	tag, err := db.Exec(ctx, `UPDATE events SET live = TRUE WHERE id = $1`, eventID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
