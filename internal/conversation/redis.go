package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/types"
)

const redisKeyPrefix = "conversation:"

// RedisStore keeps conversations in Redis so confirmations survive a process
// restart. Expiry is delegated to Redis key TTLs; Resolve uses an optimistic
// WATCH transaction for atomicity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Ping verifies connectivity at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Create(ctx context.Context, query string, pending []types.Suggestion) (*Conversation, error) {
	conv := &Conversation{
		ID:            uuid.NewString(),
		OriginalQuery: query,
		Pending:       pending,
		State:         StateAwaitingConfirmation,
		CreatedAt:     time.Now(),
	}

	b, err := json.Marshal(conv)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+conv.ID, b, s.ttl).Err(); err != nil {
		return nil, err
	}

	logger.Confirmation(ctx, conv.ID, "created", "pending", len(pending))
	return conv, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Conversation, error) {
	b, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var conv Conversation
	if err := json.Unmarshal(b, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *RedisStore) Resolve(ctx context.Context, id, response string) (Resolution, error) {
	key := redisKeyPrefix + id
	var res Resolution
	var resolveErr error

	txn := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			resolveErr = ErrNotFound
			return nil
		}
		if err != nil {
			return err
		}

		var conv Conversation
		if err := json.Unmarshal(b, &conv); err != nil {
			return err
		}
		if conv.State != StateAwaitingConfirmation {
			res = Resolution{Status: conv.State}
			resolveErr = ErrAlreadyResolved
			return nil
		}

		res = applyResponse(&conv, response)
		nb, err := json.Marshal(&conv)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, nb, redis.KeepTTL)
			return nil
		})
		return err
	}

	// Retry a few times on write conflict; the losing writer re-reads the
	// now-terminal state and reports ErrAlreadyResolved.
	for attempt := 0; attempt < 3; attempt++ {
		err := s.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Resolution{}, err
		}
		if resolveErr == nil {
			logger.Confirmation(ctx, id, string(res.Status))
		}
		return res, resolveErr
	}
	return Resolution{}, redis.TxFailedErr
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKeyPrefix+id).Err()
}

// Close releases the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
