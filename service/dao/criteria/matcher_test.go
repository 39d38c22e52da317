package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/approvalflow/model"
	"github.com/viant/approvalflow/service/dao"
)

func TestMatch(t *testing.T) {
	request := &model.Request{
		WorkflowID:        "expense",
		InitiatorID:       "alice",
		Status:            model.StatusInProgress,
		CurrentAssignees:  []string{"bob", "carol"},
		PreviousRequestID: "r0",
	}
	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expect      bool
	}{
		{description: "no parameters", expect: true},
		{description: "status match", parameters: []*dao.Parameter{ByStatus(model.StatusApproved, model.StatusInProgress)}, expect: true},
		{description: "status mismatch", parameters: []*dao.Parameter{ByStatus(model.StatusApproved)}, expect: false},
		{description: "assignee match", parameters: []*dao.Parameter{ByAssignee("carol")}, expect: true},
		{description: "assignee mismatch", parameters: []*dao.Parameter{ByAssignee("alice")}, expect: false},
		{description: "initiator and workflow", parameters: []*dao.Parameter{ByInitiator("alice"), ByWorkflow("expense")}, expect: true},
		{description: "workflow mismatch", parameters: []*dao.Parameter{ByInitiator("alice"), ByWorkflow("leave")}, expect: false},
		{description: "previous match", parameters: []*dao.Parameter{ByPrevious("r0")}, expect: true},
		{description: "previous mismatch", parameters: []*dao.Parameter{ByPrevious("r1")}, expect: false},
		{description: "unknown name ignored", parameters: []*dao.Parameter{dao.NewParameter("State", "x")}, expect: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expect, Match(request, testCase.parameters))
		})
	}
}
