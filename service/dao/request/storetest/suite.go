// Package storetest provides a behavioural test suite shared by request store
// implementations.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
	"github.com/viant/approvalflow/service/dao/criteria"
	"github.com/viant/approvalflow/service/dao/request"
)

// Run exercises a store created by newStore; every sub test gets a fresh store
func Run(t *testing.T, newStore func(t *testing.T) request.Store) {
	t.Run("create and load", func(t *testing.T) { testCreateLoad(t, newStore(t)) })
	t.Run("revision conflict", func(t *testing.T) { testConflict(t, newStore(t)) })
	t.Run("list", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("audit append", func(t *testing.T) { testAppend(t, newStore(t)) })
	t.Run("concurrent save", func(t *testing.T) { testConcurrentSave(t, newStore(t)) })
}

var baseTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// NewRequest returns an in progress request fixture
func NewRequest(id, initiator string, offset int) *model.Request {
	return &model.Request{
		ID:               id,
		WorkflowID:       "expense",
		WorkflowVersion:  1,
		InitiatorID:      initiator,
		FormData:         map[string]interface{}{"amount": 1500.0, "category": "travel"},
		Status:           model.StatusInProgress,
		CurrentStepIndex: 0,
		CurrentAssignees: []string{"bob"},
		StepApprovals:    []*model.StepApproval{{StepIndex: 0, Assignees: []string{"bob"}}},
		CreatedAt:        baseTime.Add(time.Duration(offset) * time.Minute),
		UpdatedAt:        baseTime.Add(time.Duration(offset) * time.Minute),
	}
}

// NewAction returns an audit action fixture
func NewAction(requestID string, seq int, actionType model.ActionType, by string) *model.Action {
	return &model.Action{
		ID:        fmt.Sprintf("%s-a%d", requestID, seq),
		RequestID: requestID,
		Seq:       seq,
		StepIndex: seq - 2,
		Type:      actionType,
		ByUserID:  by,
		Timestamp: baseTime.Add(time.Duration(seq) * time.Second),
	}
}

func testCreateLoad(t *testing.T, store request.Store) {
	ctx := context.Background()
	req := NewRequest("r1", "alice", 0)
	submit := NewAction("r1", 1, model.ActionSubmit, "alice")
	require.NoError(t, store.Create(ctx, req, submit))
	assert.Equal(t, 1, req.Revision)
	assert.ErrorIs(t, store.Create(ctx, NewRequest("r1", "alice", 0)), dao.ErrDuplicate)

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Revision)
	assert.Equal(t, model.StatusInProgress, loaded.Status)
	assert.Equal(t, []string{"bob"}, loaded.CurrentAssignees)
	assert.EqualValues(t, 1500.0, loaded.FormData["amount"])
	assert.True(t, baseTime.Equal(loaded.CreatedAt))
	require.Len(t, loaded.StepApprovals, 1)
	assert.Equal(t, []string{"bob"}, loaded.StepApprovals[0].Assignees)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, model.ActionSubmit, loaded.History[0].Type)

	loaded.StepApproval(0).Approve("bob")
	loaded.Status = model.StatusApproved
	loaded.CurrentAssignees = []string{}
	approve := NewAction("r1", 2, model.ActionApprove, "bob")
	loaded.History = append(loaded.History, approve)
	require.NoError(t, store.Save(ctx, loaded, approve))
	assert.Equal(t, 2, loaded.Revision)

	again, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, again.Status)
	assert.Equal(t, 2, again.Revision)
	assert.Equal(t, []string{"bob"}, again.StepApproval(0).ApprovedBy)
	require.Len(t, again.History, 2)
	assert.Equal(t, 2, again.History[1].Seq)
	assert.Equal(t, "bob", again.History[1].ByUserID)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, store.Save(ctx, nil), dao.ErrNilEntity)
}

func testConflict(t *testing.T, store request.Store) {
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, NewRequest("r1", "alice", 0), NewAction("r1", 1, model.ActionSubmit, "alice")))
	first, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	second, err := store.Load(ctx, "r1")
	require.NoError(t, err)

	first.Status = model.StatusRejected
	require.NoError(t, store.Save(ctx, first, NewAction("r1", 2, model.ActionReject, "bob")))
	second.Status = model.StatusReturned
	assert.ErrorIs(t, store.Save(ctx, second, NewAction("r1", 2, model.ActionReturn, "bob")), dao.ErrConflict)

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, loaded.Status)
	require.Len(t, loaded.History, 2)
	assert.Equal(t, model.ActionReject, loaded.History[1].Type)
}

func testList(t *testing.T, store request.Store) {
	ctx := context.Background()
	pending := NewRequest("r2", "alice", 2)
	pending.Status = model.StatusPendingAssignment
	pending.CurrentAssignees = []string{}
	other := NewRequest("r3", "dave", 1)
	other.CurrentAssignees = []string{"carol", "erin"}
	for _, req := range []*model.Request{NewRequest("r1", "alice", 0), pending, other} {
		require.NoError(t, store.Create(ctx, req, NewAction(req.ID, 1, model.ActionSubmit, req.InitiatorID)))
	}

	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expect      []string
	}{
		{description: "all ordered by creation", expect: []string{"r1", "r3", "r2"}},
		{description: "by initiator", parameters: []*dao.Parameter{criteria.ByInitiator("alice")}, expect: []string{"r1", "r2"}},
		{description: "by status", parameters: []*dao.Parameter{criteria.ByStatus(model.StatusPendingAssignment)}, expect: []string{"r2"}},
		{description: "by assignee", parameters: []*dao.Parameter{criteria.ByAssignee("erin")}, expect: []string{"r3"}},
		{description: "in progress for bob", parameters: []*dao.Parameter{criteria.ByStatus(model.StatusInProgress), criteria.ByAssignee("bob")}, expect: []string{"r1"}},
		{description: "no match", parameters: []*dao.Parameter{criteria.ByWorkflow("leave")}, expect: []string{}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			requests, err := store.List(ctx, testCase.parameters...)
			require.NoError(t, err)
			actual := make([]string, 0, len(requests))
			for _, req := range requests {
				actual = append(actual, req.ID)
			}
			assert.Equal(t, testCase.expect, actual)
		})
	}
}

func testAppend(t *testing.T, store request.Store) {
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, NewRequest("r1", "alice", 0), NewAction("r1", 1, model.ActionSubmit, "alice")))
	note := NewAction("r1", 2, model.ActionAdminRerun, "admin")
	require.NoError(t, store.Append(ctx, note))
	require.NoError(t, store.Append(ctx, note))
	assert.ErrorIs(t, store.Append(ctx, nil), dao.ErrNilEntity)

	actions, err := store.ListByRequest(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, model.ActionSubmit, actions[0].Type)
	assert.Equal(t, model.ActionAdminRerun, actions[1].Type)
}

func testConcurrentSave(t *testing.T, store request.Store) {
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, NewRequest("r1", "alice", 0), NewAction("r1", 1, model.ActionSubmit, "alice")))
	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		req, err := store.Load(ctx, "r1")
		require.NoError(t, err)
		wg.Add(1)
		go func(req *model.Request, i int) {
			defer wg.Done()
			req.CurrentStepIndex = i
			results <- store.Save(ctx, req, NewAction("r1", 2, model.ActionApprove, fmt.Sprintf("u%d", i)))
		}(req, i)
	}
	wg.Wait()
	close(results)
	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, dao.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Revision)
	assert.Len(t, loaded.History, 2)
}
