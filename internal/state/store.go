// internal/state/store.go
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	commonerrors "voicefin/internal/common/errors"
	"voicefin/internal/common/logger"
)

// DefaultTTL is the idle window after which an untouched conversation state is
// dropped. Expiry is advisory: it is enforced by the cache, not swept.
const DefaultTTL = 300 * time.Second

// Store persists per-user conversation state with a fixed TTL. Lock linearizes
// turns for one user across the load-merge-save cycle; different users never
// contend.
type Store interface {
	Load(ctx context.Context, userID string) (*ConversationState, error)
	Save(ctx context.Context, userID string, s *ConversationState) error
	Clear(ctx context.Context, userID string) error
	Lock(userID string) (unlock func())
}

// RedisStore keeps state under state:<user_id> keys.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRedisStore creates a Store over the given Redis client. A zero ttl falls
// back to DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "state-store"}),
		locks:  make(map[string]*sync.Mutex),
	}
}

func stateKey(userID string) string {
	return fmt.Sprintf("state:%s", userID)
}

// Load returns the stored state, or a fresh empty state when the key is absent
// or expired. The two cases are indistinguishable to callers.
func (r *RedisStore) Load(ctx context.Context, userID string) (*ConversationState, error) {
	data, err := r.client.Get(ctx, stateKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, commonerrors.NewStateLoadFailedError(err)
	}

	var s ConversationState
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		// A corrupt entry is dropped like an expired one.
		r.logger.Warn("discarding undecodable state", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return New(), nil
	}
	return &s, nil
}

// Save persists the state and re-arms the TTL.
func (r *RedisStore) Save(ctx context.Context, userID string, s *ConversationState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return commonerrors.NewStateSaveFailedError(err)
	}
	if err := r.client.Set(ctx, stateKey(userID), data, r.ttl).Err(); err != nil {
		return commonerrors.NewStateSaveFailedError(err)
	}
	return nil
}

// Clear removes the state. Called exactly once per committed action.
func (r *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, stateKey(userID)).Err(); err != nil {
		return commonerrors.NewStateSaveFailedError(err)
	}
	return nil
}

// Lock returns after acquiring the per-user mutex; the returned func releases
// it. Lock entries are created on first use and kept for the process lifetime,
// which is bounded by the user population of one instance.
func (r *RedisStore) Lock(userID string) func() {
	r.mu.Lock()
	l, ok := r.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[userID] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}
