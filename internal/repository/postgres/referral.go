package postgres

import (
	"context"
	"fmt"

	"github.com/clubdoor/clubdoor/internal/domain"
)

type ReferralRepo struct {
	store *Store
}

// Attribute bumps the denormalized counter for (event, code), creating the
// record if the code is untracked. A single upsert, atomic on its own.
func (r *ReferralRepo) Attribute(ctx context.Context, eventID int64, code string) error {
	const op = "postgres.ReferralRepo.Attribute"

	db := r.store.pool

	_, err := db.Exec(ctx,
		`INSERT INTO referral_records(event_id, code, count)
       	 VALUES ($1, $2, 1)
      	 ON CONFLICT (event_id, code)
      	 DO UPDATE SET count = referral_records.count + 1`,
		eventID, code,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// Recompute recounts attributions from the ticket and waitlist rows and
// overwrites the stored counters, repairing any drift from partial failures.
// eventID == 0 recomputes every event.
//
// Returns:
//   - int: number of (event, code) records written.
func (r *ReferralRepo) Recompute(ctx context.Context, eventID int64) (int, error) {
	const op = "postgres.ReferralRepo.Recompute"

	var n int
	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		var err error
		n, err = r.recomputeCore(ctx, tx, eventID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return n, nil
}

// Leaderboard lists records by descending count. eventID == 0 returns every
// event, grouped by event first.
func (r *ReferralRepo) Leaderboard(ctx context.Context, eventID int64) ([]domain.ReferralRecord, error) {
	const op = "postgres.ReferralRepo.Leaderboard"

	db := r.store.pool

	query := `SELECT id, event_id, code, count
       	 FROM referral_records
      	 ORDER BY event_id, count DESC, code`
	args := []any{}
	if eventID != 0 {
		query = `SELECT id, event_id, code, count
       	 FROM referral_records
      	 WHERE event_id = $1
      	 ORDER BY count DESC, code`
		args = append(args, eventID)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.ReferralRecord
	for rows.Next() {
		var rec domain.ReferralRecord
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Code, &rec.Count); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func (r *ReferralRepo) recomputeCore(ctx context.Context, db DB, eventID int64) (int, error) {
	// Zero everything in scope first so codes with no remaining
	// attributions read as 0 rather than keeping a stale count.
	zero := `UPDATE referral_records SET count = 0`
	zeroArgs := []any{}
	if eventID != 0 {
		zero += ` WHERE event_id = $1`
		zeroArgs = append(zeroArgs, eventID)
	}
	if _, err := db.Exec(ctx, zero, zeroArgs...); err != nil {
		return 0, err
	}

	upsert := `
		WITH src AS (
			SELECT event_id, referral_code AS code, COUNT(*) AS c
		  	  FROM tickets
		 	 WHERE referral_code IS NOT NULL
		 	 GROUP BY event_id, referral_code
			UNION ALL
			SELECT event_id, referral_code AS code, COUNT(*) AS c
		  	  FROM waitlist_entries
		 	 WHERE referral_code IS NOT NULL
		 	 GROUP BY event_id, referral_code
		), agg AS (
			SELECT event_id, code, SUM(c)::int AS c
		  	  FROM src
		 	 GROUP BY event_id, code
		)
		INSERT INTO referral_records(event_id, code, count)
		SELECT event_id, code, c FROM agg`
	upsertArgs := []any{}
	if eventID != 0 {
		upsert += ` WHERE event_id = $1`
		upsertArgs = append(upsertArgs, eventID)
	}
	upsert += `
		ON CONFLICT (event_id, code)
		DO UPDATE SET count = EXCLUDED.count`

	tag, err := db.Exec(ctx, upsert, upsertArgs...)
	if err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}
