package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/directory"
	"github.com/viant/approvalflow/service/directory/memory"
)

type flakyDirectory struct {
	directory.Directory
	err error
}

func (d *flakyDirectory) FindActiveUsersByRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.Directory.FindActiveUsersByRoles(ctx, roleIDs)
}

func TestService(t *testing.T) {
	ctx := context.Background()
	inner, err := memory.New(&model.User{ID: "carol", RoleIDs: []string{"finance"}})
	require.NoError(t, err)
	flaky := &flakyDirectory{Directory: inner}
	srv := New(flaky, 2, 20*time.Millisecond)

	for i := 0; i < 3; i++ {
		_, err = srv.GetUser(ctx, "ghost")
		assert.ErrorIs(t, err, dao.ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, srv.State())

	flaky.err = errors.New("connection refused")
	for i := 0; i < 2; i++ {
		_, err = srv.FindActiveUsersByRoles(ctx, []string{"finance"})
		assert.EqualError(t, err, "connection refused")
	}
	assert.Equal(t, gobreaker.StateOpen, srv.State())
	_, err = srv.GetUser(ctx, "carol")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	flaky.err = nil
	time.Sleep(30 * time.Millisecond)
	members, err := srv.FindActiveUsersByRoles(ctx, []string{"finance"})
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, members)
	assert.Equal(t, gobreaker.StateClosed, srv.State())
}
