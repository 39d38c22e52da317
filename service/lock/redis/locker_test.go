package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/approvalflow/service/lock"
)

func TestLocker(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	locker := New(client, WithPrefix("test:"), WithTTL(time.Minute), WithWait(5*time.Second))
	unlock, err := locker.Lock(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:r1"))

	short := New(client, WithPrefix("test:"), WithWait(30*time.Millisecond))
	_, err = short.Lock(ctx, "r1")
	assert.ErrorIs(t, err, lock.ErrNotAcquired)

	unlock()
	assert.False(t, mr.Exists("test:r1"))

	var wg sync.WaitGroup
	var holders, overlaps, acquired int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(ctx, "r2")
			if !assert.NoError(t, err) {
				return
			}
			if atomic.AddInt32(&holders, 1) > 1 {
				atomic.AddInt32(&overlaps, 1)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&holders, -1)
			atomic.AddInt32(&acquired, 1)
			release()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 10, acquired)
	assert.EqualValues(t, 0, overlaps)
}

func TestLocker_ReleaseOnlyOwnToken(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	locker := New(client, WithTTL(time.Second))
	unlock, err := locker.Lock(ctx, "r1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	relock, err := locker.Lock(ctx, "r1")
	require.NoError(t, err)
	unlock()
	assert.True(t, mr.Exists(defaultPrefix+"r1"))
	relock()
	assert.False(t, mr.Exists(defaultPrefix+"r1"))
}

func TestWithWait(t *testing.T) {
	testCases := []struct {
		description string
		wait        time.Duration
		expect      time.Duration
	}{
		{description: "positive", wait: time.Second, expect: time.Second},
		{description: "zero keeps default", wait: 0, expect: defaultWait},
		{description: "negative keeps default", wait: -time.Second, expect: defaultWait},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			locker := New(nil, WithWait(testCase.wait))
			assert.Equal(t, testCase.expect, locker.wait)
		})
	}
}
