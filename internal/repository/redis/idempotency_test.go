package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore(t *testing.T) {
	key := KeyIdemTicket(1, "retry-abc")

	t.Run("first request takes the lock", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		defer mock.ClearExpect()
		s := NewIdempotencyStore(db, 2*time.Hour)

		mock.ExpectSetNX(key, "LOCK", time.Minute).SetVal(true)

		locked, err := s.AcquireLock(context.Background(), key, time.Minute)
		require.NoError(t, err)
		assert.True(t, locked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("saved result replays", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		defer mock.ClearExpect()
		s := NewIdempotencyStore(db, 2*time.Hour)

		mock.ExpectSet(key, `RES:{"ticket_id":"t-1"}`, 2*time.Hour).SetVal("OK")
		mock.ExpectGet(key).SetVal(`RES:{"ticket_id":"t-1"}`)

		require.NoError(t, s.SaveResult(context.Background(), key, `{"ticket_id":"t-1"}`))

		payload, ok, err := s.GetResult(context.Background(), key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"ticket_id":"t-1"}`, payload)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a held lock is not a result", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		defer mock.ClearExpect()
		s := NewIdempotencyStore(db, 2*time.Hour)

		mock.ExpectGet(key).SetVal("LOCK")

		_, ok, err := s.GetResult(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, ok)

		mock.ExpectGet(key).SetVal("LOCK")
		locked, err := s.IsLocked(context.Background(), key)
		require.NoError(t, err)
		assert.True(t, locked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing key", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		defer mock.ClearExpect()
		s := NewIdempotencyStore(db, 2*time.Hour)

		mock.ExpectGet(key).RedisNil()

		_, ok, err := s.GetResult(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("release drops the key", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		defer mock.ClearExpect()
		s := NewIdempotencyStore(db, 2*time.Hour)

		mock.ExpectDel(key).SetVal(1)

		require.NoError(t, s.Release(context.Background(), key))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
