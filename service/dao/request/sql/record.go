package sql

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/viant/approvalflow/model"
)

const requestColumns = `id, workflow_id, workflow_version, initiator_id, form_data, status, current_step_index,
	current_assignees, step_approvals, previous_request_id, revision, created_at, updated_at`

const actionColumns = `id, request_id, seq, step_index, action, by_user_id, comment, created_at`

type requestRecord struct {
	ID                string         `db:"id"`
	WorkflowID        string         `db:"workflow_id"`
	WorkflowVersion   int            `db:"workflow_version"`
	InitiatorID       string         `db:"initiator_id"`
	FormData          []byte         `db:"form_data"`
	Status            string         `db:"status"`
	CurrentStepIndex  int            `db:"current_step_index"`
	CurrentAssignees  pq.StringArray `db:"current_assignees"`
	StepApprovals     []byte         `db:"step_approvals"`
	PreviousRequestID string         `db:"previous_request_id"`
	Revision          int            `db:"revision"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

type actionRecord struct {
	ID        string    `db:"id"`
	RequestID string    `db:"request_id"`
	Seq       int       `db:"seq"`
	StepIndex int       `db:"step_index"`
	Action    string    `db:"action"`
	ByUserID  string    `db:"by_user_id"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

func newRequestRecord(req *model.Request) (*requestRecord, error) {
	formData := req.FormData
	if formData == nil {
		formData = map[string]interface{}{}
	}
	form, err := json.Marshal(formData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal form data: %w", err)
	}
	approvals := req.StepApprovals
	if approvals == nil {
		approvals = []*model.StepApproval{}
	}
	steps, err := json.Marshal(approvals)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal step approvals: %w", err)
	}
	assignees := req.CurrentAssignees
	if assignees == nil {
		assignees = []string{}
	}
	return &requestRecord{
		ID:                req.ID,
		WorkflowID:        req.WorkflowID,
		WorkflowVersion:   req.WorkflowVersion,
		InitiatorID:       req.InitiatorID,
		FormData:          form,
		Status:            string(req.Status),
		CurrentStepIndex:  req.CurrentStepIndex,
		CurrentAssignees:  pq.StringArray(assignees),
		StepApprovals:     steps,
		PreviousRequestID: req.PreviousRequestID,
		Revision:          req.Revision,
		CreatedAt:         req.CreatedAt,
		UpdatedAt:         req.UpdatedAt,
	}, nil
}

func (r *requestRecord) request() (*model.Request, error) {
	ret := &model.Request{
		ID:                r.ID,
		WorkflowID:        r.WorkflowID,
		WorkflowVersion:   r.WorkflowVersion,
		InitiatorID:       r.InitiatorID,
		Status:            model.Status(r.Status),
		CurrentStepIndex:  r.CurrentStepIndex,
		CurrentAssignees:  append([]string{}, r.CurrentAssignees...),
		PreviousRequestID: r.PreviousRequestID,
		Revision:          r.Revision,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
	if len(r.FormData) > 0 {
		if err := json.Unmarshal(r.FormData, &ret.FormData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal form data of %s: %w", r.ID, err)
		}
	}
	if len(r.StepApprovals) > 0 {
		if err := json.Unmarshal(r.StepApprovals, &ret.StepApprovals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal step approvals of %s: %w", r.ID, err)
		}
	}
	return ret, nil
}

func newActionRecord(action *model.Action) *actionRecord {
	return &actionRecord{
		ID:        action.ID,
		RequestID: action.RequestID,
		Seq:       action.Seq,
		StepIndex: action.StepIndex,
		Action:    string(action.Type),
		ByUserID:  action.ByUserID,
		Comment:   action.Comment,
		CreatedAt: action.Timestamp,
	}
}

func (r *actionRecord) action() *model.Action {
	return &model.Action{
		ID:        r.ID,
		RequestID: r.RequestID,
		Seq:       r.Seq,
		StepIndex: r.StepIndex,
		Type:      model.ActionType(r.Action),
		ByUserID:  r.ByUserID,
		Comment:   r.Comment,
		Timestamp: r.CreatedAt.UTC(),
	}
}
