package notify

import (
	"context"
	"errors"

	redisrepo "github.com/clubdoor/clubdoor/internal/repository/redis"
)

// Hub fans an admission-affecting change out to cache invalidation and the
// admin-console pubsub channel. Services treat its failures as non-fatal
// side effects.
type Hub struct {
	cache  *redisrepo.Cache
	pubsub *redisrepo.AdmissionsPubSub
}

func New(cache *redisrepo.Cache, pubsub *redisrepo.AdmissionsPubSub) *Hub {
	return &Hub{cache: cache, pubsub: pubsub}
}

func (h *Hub) Changed(ctx context.Context, eventID int64, kind string) error {
	var errInvalidate, errPublish error

	if h.cache != nil {
		errInvalidate = h.cache.InvalidateEvent(ctx, eventID)
	}

	if h.pubsub != nil {
		errPublish = h.pubsub.Publish(ctx, eventID, kind)
	}

	return errors.Join(errInvalidate, errPublish)
}
