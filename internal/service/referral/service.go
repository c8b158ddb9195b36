package referral

import (
	"context"
	"fmt"
	"time"

	"github.com/clubdoor/clubdoor/internal/domain"
	"github.com/clubdoor/clubdoor/internal/metrics"
	redisrepo "github.com/clubdoor/clubdoor/internal/repository/redis"
)

type Config struct {
	LeaderboardTTL time.Duration
}

// Store is the storage collaborator. Attribute is a single atomic upsert;
// Recompute recounts from the source-of-truth rows in one transaction.
type Store interface {
	Attribute(ctx context.Context, eventID int64, code string) error
	Recompute(ctx context.Context, eventID int64) (int, error)
	Leaderboard(ctx context.Context, eventID int64) ([]domain.ReferralRecord, error)
}

type Service struct {
	store Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.LeaderboardTTL <= 0 {
		cfg.LeaderboardTTL = 15 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// Attribute credits a ticket or waitlist join to a referral code,
// creating the record when the code is untracked.
func (s *Service) Attribute(ctx context.Context, eventID int64, code string, kind domain.AttributionKind) error {
	const op = "service.referral.Attribute"

	if code == "" {
		return nil
	}

	if err := s.store.Attribute(ctx, eventID, code); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	metrics.ReferralAttributions.WithLabelValues(string(kind)).Inc()

	return nil
}

// Recompute overwrites every stored counter from the ticket and waitlist
// rows. Running it twice in a row yields identical counts; it exists to
// repair drift from partially-failed attributions.
//
// Returns:
//   - int: number of records written.
func (s *Service) Recompute(ctx context.Context, eventID int64) (int, error) {
	const op = "service.referral.Recompute"

	n, err := s.store.Recompute(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil && eventID != 0 {
		_ = s.cache.Del(ctx, redisrepo.KeyLeaderboard(eventID))
	}

	return n, nil
}

// Leaderboard lists codes by descending count, grouped by event when no
// event filter is given. Event-scoped reads go through the cache.
func (s *Service) Leaderboard(ctx context.Context, eventID int64) ([]domain.ReferralRecord, error) {
	const op = "service.referral.Leaderboard"

	if s.cache == nil || eventID == 0 {
		recs, err := s.store.Leaderboard(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return recs, nil
	}

	recs, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyLeaderboard(eventID),
		s.cfg.LeaderboardTTL,
		func(ctx context.Context) ([]domain.ReferralRecord, error) {
			return s.store.Leaderboard(ctx, eventID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return recs, nil
}
