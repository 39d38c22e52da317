package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/approvalflow/service/lock"
)

func TestLocker(t *testing.T) {
	locker := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "r1")
			if !assert.NoError(t, err) {
				return
			}
			value := counter
			time.Sleep(time.Microsecond)
			counter = value + 1
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Empty(t, locker.entries)

	unlock, err := locker.Lock(ctx, "r1")
	require.NoError(t, err)
	other, err := locker.Lock(ctx, "r2")
	require.NoError(t, err)
	other()

	timeout, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(timeout, "r1")
	assert.ErrorIs(t, err, lock.ErrNotAcquired)
	unlock()
	unlock()
	assert.Empty(t, locker.entries)
}
