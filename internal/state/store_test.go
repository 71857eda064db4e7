// internal/state/store_test.go
package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "voicefin/internal/common/errors"
	"voicefin/internal/common/logger"
	"voicefin/internal/intent"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, DefaultTTL, logger.NewTestLogger(t)), mr
}

func TestLoadMissReturnsFreshState(t *testing.T) {
	store, _ := newTestStore(t)

	s, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, New(), s)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	in := New()
	Merge(in, intent.UpdateBudget, intent.SlotSet{
		Budget: &intent.BudgetSlots{Category: strPtr("food")},
	})
	require.NoError(t, store.Save(ctx, "u1", in))

	// TTL is armed on save.
	ttl := mr.TTL("state:u1")
	assert.Equal(t, DefaultTTL, ttl)

	out, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestExpiryLooksLikeMiss(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	in := New()
	Merge(in, intent.CreateReminder, intent.SlotSet{
		Reminder: &intent.ReminderSlots{Name: strPtr("pay rent")},
	})
	require.NoError(t, store.Save(ctx, "u1", in))

	mr.FastForward(DefaultTTL + time.Second)

	out, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, New(), out)
}

func TestSaveRearmsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", New()))
	mr.FastForward(200 * time.Second)
	require.NoError(t, store.Save(ctx, "u1", New()))
	mr.FastForward(200 * time.Second)

	// 400s elapsed total but only 200s since the last save.
	assert.True(t, mr.Exists("state:u1"))
}

func TestClearRemovesState(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", New()))
	require.NoError(t, store.Clear(ctx, "u1"))
	assert.False(t, mr.Exists("state:u1"))

	// Clearing an absent key is not an error.
	require.NoError(t, store.Clear(ctx, "u1"))
}

func TestCorruptEntryDropsToFreshState(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, mr.Set("state:u1", "{not json"))

	s, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, New(), s)
}

func TestLoadFailureSurfacesStandardError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, DefaultTTL, logger.NewNoOpLogger())

	mock.ExpectGet("state:u1").SetErr(assert.AnError)

	_, err := store.Load(context.Background(), "u1")
	require.Error(t, err)
	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeStateLoadFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestSaveFailureSurfacesStandardError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, DefaultTTL, logger.NewNoOpLogger())

	mock.Regexp().ExpectSet("state:u1", `.*`, DefaultTTL).SetErr(assert.AnError)

	err := store.Save(context.Background(), "u1", New())
	require.Error(t, err)
	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeStateSaveFailed, stdErr.Code)
}

func TestLockSerializesPerUser(t *testing.T) {
	store, _ := newTestStore(t)

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		wg      sync.WaitGroup
	)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := store.Lock("u1")
			defer unlock()

			mu.Lock()
			running++
			if running > maxSeen {
				maxSeen = running
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestLockIndependentUsers(t *testing.T) {
	store, _ := newTestStore(t)

	unlockA := store.Lock("alice")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := store.Lock("bob")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for a different user should not block")
	}
}
