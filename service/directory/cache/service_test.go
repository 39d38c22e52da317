package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/directory"
	"github.com/viant/approvalflow/service/directory/memory"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	inner, err := memory.New(
		&model.User{ID: "alice", ReportingManagerID: "bob"},
		&model.User{ID: "carol", RoleIDs: []string{"finance"}},
	)
	require.NoError(t, err)
	srv := New(inner, 16, time.Hour)

	members, err := srv.FindActiveUsersByRoles(ctx, []string{"finance"})
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, members)
	user, err := srv.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.ReportingManagerID)

	require.NoError(t, inner.Put(ctx, &model.User{ID: "erin", RoleIDs: []string{"finance"}}))
	require.NoError(t, inner.Remove(ctx, "alice"))

	members, err = srv.FindActiveUsersByRoles(ctx, []string{"finance"})
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, members)
	user, err = srv.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.ReportingManagerID)

	srv.Purge()
	members, err = srv.FindActiveUsersByRoles(ctx, []string{"finance"})
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "erin"}, members)
	_, err = srv.GetUser(ctx, "alice")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestService_Expiry(t *testing.T) {
	ctx := context.Background()
	inner, err := memory.New(&model.User{ID: "carol", RoleIDs: []string{"finance"}})
	require.NoError(t, err)
	srv := New(inner, 16, 20*time.Millisecond)
	_, err = srv.FindActiveUsersByRoles(ctx, []string{"finance"})
	require.NoError(t, err)
	require.NoError(t, inner.Put(ctx, &model.User{ID: "erin", RoleIDs: []string{"finance"}}))

	assert.Eventually(t, func() bool {
		members, err := srv.FindActiveUsersByRoles(ctx, []string{"finance"})
		return err == nil && len(members) == 2
	}, time.Second, 10*time.Millisecond)
}

type slowDirectory struct {
	directory.Directory
	calls   int32
	release chan struct{}
}

func (d *slowDirectory) GetUser(ctx context.Context, id string) (*model.User, error) {
	atomic.AddInt32(&d.calls, 1)
	<-d.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &model.User{ID: id}, nil
}

func TestService_CoalescesMisses(t *testing.T) {
	inner := &slowDirectory{release: make(chan struct{})}
	srv := New(inner, 16, time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := srv.GetUser(context.Background(), "alice")
			assert.NoError(t, err)
			assert.Equal(t, "alice", user.ID)
		}()
	}
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&inner.calls) >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(inner.release)
	wg.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&inner.calls))
}

func TestService_EmptyMembersNotCached(t *testing.T) {
	ctx := context.Background()
	inner, err := memory.New(&model.User{ID: "carol", RoleIDs: []string{"finance"}})
	require.NoError(t, err)
	srv := New(inner, 16, time.Hour)

	members, err := srv.FindActiveUsersByRoles(ctx, []string{"legal"})
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, inner.Put(ctx, &model.User{ID: "lara", RoleIDs: []string{"legal"}}))
	members, err = srv.FindActiveUsersByRoles(ctx, []string{"legal"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lara"}, members)
}

func TestService_SharedLoadOutlivesCancelledCaller(t *testing.T) {
	inner := &slowDirectory{release: make(chan struct{})}
	srv := New(inner, 16, time.Hour)
	first, cancel := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := srv.GetUser(first, "alice")
		firstDone <- err
	}()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&inner.calls) == 1 }, time.Second, time.Millisecond)

	secondDone := make(chan *model.User, 1)
	go func() {
		user, err := srv.GetUser(context.Background(), "alice")
		assert.NoError(t, err)
		secondDone <- user
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(inner.release)

	user := <-secondDone
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.ID)
	assert.NoError(t, <-firstDone)
	assert.EqualValues(t, 1, atomic.LoadInt32(&inner.calls))
}
