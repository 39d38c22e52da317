package fs

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao/request"
	"github.com/viant/approvalflow/service/dao/request/storetest"
)

func TestService(t *testing.T) {
	counter := 0
	storetest.Run(t, func(t *testing.T) request.Store {
		counter++
		srv, err := New(fmt.Sprintf("mem://localhost/requests/%s/%d", t.Name(), counter), afs.New())
		require.NoError(t, err)
		return srv
	})
}

func TestService_InterruptedSave(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	srv, err := New("mem://localhost/interrupted", fs)
	require.NoError(t, err)
	require.NoError(t, srv.Create(ctx, storetest.NewRequest("r1", "alice", 0), storetest.NewAction("r1", 1, model.ActionSubmit, "alice")))

	orphan := storetest.NewAction("r1", 2, model.ActionReject, "bob")
	require.NoError(t, srv.upload(ctx, srv.actionURL("r1", 2), orphan))

	actions, err := srv.ListByRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, actions, 1)

	loaded, err := srv.Load(ctx, "r1")
	require.NoError(t, err)
	approve := storetest.NewAction("r1", 2, model.ActionApprove, "bob")
	require.NoError(t, srv.Save(ctx, loaded, approve))

	actions, err = srv.ListByRequest(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, model.ActionApprove, actions[1].Type)

	_, err = New("", fs)
	assert.Error(t, err)
}
